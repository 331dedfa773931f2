package post

import (
	"context"
	"time"

	"xpilot/internal/core/post"
)

// PostRepository پورت برای ذخیره‌سازی و بازیابی post_history
type PostRepository interface {
	Create(ctx context.Context, p *post.Post) (*post.Post, error)
	FindByID(ctx context.Context, id string) (*post.Post, error)
	FindByUserID(ctx context.Context, userID string, status post.Status) ([]*post.Post, error)
	// UpdateIf writes p only while the stored status still equals from.
	UpdateIf(ctx context.Context, p *post.Post, from post.Status) (bool, error)
	// CountEngagementsSince counts rows with an original_tweet_id created at or after since.
	CountEngagementsSince(ctx context.Context, userID string, since time.Time) (int64, error)
	FindScheduled(ctx context.Context) ([]*post.Post, error)
	FindDue(ctx context.Context, before time.Time, limit int) ([]*post.Post, error)
	FindTopPosted(ctx context.Context, userID string, limit int) ([]*post.Post, error)
	FindWithABTest(ctx context.Context, userID string) ([]*post.Post, error)
}

type CreateInput struct {
	UserID           string
	TwitterAccountID string
	Text             string
	ScheduledFor     time.Time
	OriginalTweetID  string
	RetweetType      post.RetweetType
	Trend            string
	Purpose          string
	ABTestID         string
	NaturalnessScore *int
}

// Executor publishes a single post row to the social network and returns
// the resulting external tweet id.
type Executor interface {
	Execute(ctx context.Context, p *post.Post) (string, error)
}
