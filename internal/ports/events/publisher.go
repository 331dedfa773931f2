package events

import (
	"context"
	"time"
)

const (
	PostPosted  = "post.posted"
	PostFailed  = "post.failed"
	PostDeleted = "post.deleted"
)

type PostEvent struct {
	Type       string    `json:"type"`
	PostID     string    `json:"post_id"`
	UserID     string    `json:"user_id"`
	TweetID    string    `json:"tweet_id,omitempty"`
	Error      string    `json:"error,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, evt PostEvent) error
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, PostEvent) error { return nil }
