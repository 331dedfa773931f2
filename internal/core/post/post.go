package post

import (
	"time"

	"github.com/gofrs/uuid"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusPosted    Status = "posted"
	StatusFailed    Status = "failed"
	StatusDeleted   Status = "deleted"
)

type RetweetType string

const (
	RetweetSimple RetweetType = "simple"
	RetweetQuote  RetweetType = "quote"
)

// Post یک ردیف از post_history؛ هم پست‌های زمان‌بندی شده و هم اکشن‌های انجام شده
type Post struct {
	ID               uuid.UUID     `gorm:"primaryKey;type:char(36)" json:"id"`
	UserID           uuid.UUID     `gorm:"type:char(36);not null;index" json:"user_id"`
	TwitterAccountID uuid.NullUUID `gorm:"type:char(36)" json:"twitter_account_id"`
	Text             string        `gorm:"type:text;not null" json:"text"`
	Status           Status        `gorm:"type:varchar(20);not null;index" json:"status"`
	ScheduledFor     *time.Time    `gorm:"index" json:"scheduled_for,omitempty"`
	OriginalTweetID  *string       `gorm:"type:varchar(64);index" json:"original_tweet_id,omitempty"`
	RetweetType      *RetweetType  `gorm:"type:varchar(10)" json:"retweet_type,omitempty"`
	NaturalnessScore *int          `json:"naturalness_score,omitempty"`
	Trend            *string       `gorm:"type:varchar(255)" json:"trend,omitempty"`
	Purpose          *string       `gorm:"type:varchar(255)" json:"purpose,omitempty"`
	ABTestID         *string       `gorm:"type:varchar(64);index" json:"ab_test_id,omitempty"`
	TweetID          *string       `gorm:"type:varchar(64)" json:"tweet_id,omitempty"`
	ImpressionCount  *int64        `json:"impression_count,omitempty"`
	LikeCount        int64         `gorm:"not null;default:0" json:"like_count"`
	RetweetCount     int64         `gorm:"not null;default:0" json:"retweet_count"`
	ReplyCount       int64         `gorm:"not null;default:0" json:"reply_count"`
	QuoteCount       int64         `gorm:"not null;default:0" json:"quote_count"`
	LastError        *string       `gorm:"type:text" json:"last_error,omitempty"`
	PostedAt         *time.Time    `json:"posted_at,omitempty"`
	CreatedAt        time.Time     `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt        time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Post) TableName() string { return "post_history" }

// IsEngagement پست‌هایی که به توییت دیگری اشاره دارند (ریتوییت، کوت، ریپلای)
func (p *Post) IsEngagement() bool {
	return p.OriginalTweetID != nil && *p.OriginalTweetID != ""
}

// Impressions returns the impression count, treating unknown as zero.
func (p *Post) Impressions() int64 {
	if p.ImpressionCount == nil {
		return 0
	}
	return *p.ImpressionCount
}

func (p *Post) Engagement() int64 {
	return p.LikeCount + p.RetweetCount + p.ReplyCount + p.QuoteCount
}

// CanTransition reports whether the lifecycle allows moving from s to next.
// deleted is terminal; posted and failed are only ever reached from scheduled.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusScheduled:
		return next == StatusPosted || next == StatusFailed || next == StatusDeleted
	case StatusPosted, StatusFailed:
		return next == StatusDeleted
	default:
		return false
	}
}

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusPosted, StatusFailed, StatusDeleted:
		return true
	}
	return false
}

// Valid reports whether t is simple or quote. An empty type means an
// ordinary post or a reply and is checked by callers.
func (t RetweetType) Valid() bool {
	return t == RetweetSimple || t == RetweetQuote
}
