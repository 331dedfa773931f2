package social

import (
	"context"
	"errors"
	"time"
)

// ErrUnauthorized is returned when the access token is expired or revoked.
var ErrUnauthorized = errors.New("x api: unauthorized")

type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

type CreatePostRequest struct {
	Text         string
	QuoteTweetID string
	InReplyToID  string
}

type Metrics struct {
	TweetID     string
	Impressions *int64
	Likes       int64
	Retweets    int64
	Replies     int64
	Quotes      int64
}

// Client پورت خروجی برای X API
type Client interface {
	CreatePost(ctx context.Context, accessToken string, req CreatePostRequest) (string, error)
	Retweet(ctx context.Context, accessToken, xUserID, tweetID string) error
	GetMetrics(ctx context.Context, accessToken, tweetID string) (*Metrics, error)
	RefreshToken(ctx context.Context, refreshToken string) (*Tokens, error)
}
