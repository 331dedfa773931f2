package database

import (
	"context"
	"time"

	"xpilot/internal/core/post"

	"gorm.io/gorm"
)

// PostRepositoryDatabase پیاده‌سازی PostRepository برای دیتابیس
type PostRepositoryDatabase struct {
	db *gorm.DB
}

// NewPostRepositoryDatabase سازنده PostRepositoryDatabase
func NewPostRepositoryDatabase(db *gorm.DB) *PostRepositoryDatabase {
	return &PostRepositoryDatabase{db: db}
}

func (repo *PostRepositoryDatabase) Create(ctx context.Context, p *post.Post) (*post.Post, error) {
	if err := repo.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (repo *PostRepositoryDatabase) FindByID(ctx context.Context, id string) (*post.Post, error) {
	var p post.Post
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, notFound(err, "post")
	}
	return &p, nil
}

// FindByUserID پست‌های کاربر؛ وضعیت خالی یعنی همه به جز deleted
func (repo *PostRepositoryDatabase) FindByUserID(ctx context.Context, userID string, status post.Status) ([]*post.Post, error) {
	q := repo.db.WithContext(ctx).Where("user_id = ?", userID)
	if status == "" {
		q = q.Where("status <> ?", post.StatusDeleted)
	} else {
		q = q.Where("status = ?", status)
	}
	var posts []*post.Post
	if err := q.Order("created_at DESC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// UpdateIf conditional update keyed on the current status.
func (repo *PostRepositoryDatabase) UpdateIf(ctx context.Context, p *post.Post, from post.Status) (bool, error) {
	res := repo.db.WithContext(ctx).
		Model(&post.Post{}).
		Where("id = ? AND status = ?", p.ID, from).
		Updates(map[string]interface{}{
			"text":              p.Text,
			"status":            p.Status,
			"scheduled_for":     p.ScheduledFor,
			"naturalness_score": p.NaturalnessScore,
			"tweet_id":          p.TweetID,
			"last_error":        p.LastError,
			"posted_at":         p.PostedAt,
			"impression_count":  p.ImpressionCount,
			"like_count":        p.LikeCount,
			"retweet_count":     p.RetweetCount,
			"reply_count":       p.ReplyCount,
			"quote_count":       p.QuoteCount,
			"updated_at":        time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (repo *PostRepositoryDatabase) CountEngagementsSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	var n int64
	err := repo.db.WithContext(ctx).
		Model(&post.Post{}).
		Where("user_id = ? AND original_tweet_id IS NOT NULL AND original_tweet_id <> '' AND created_at >= ?", userID, since).
		Count(&n).Error
	return n, err
}

func (repo *PostRepositoryDatabase) FindScheduled(ctx context.Context) ([]*post.Post, error) {
	var posts []*post.Post
	if err := repo.db.WithContext(ctx).Where("status = ?", post.StatusScheduled).Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (repo *PostRepositoryDatabase) FindDue(ctx context.Context, before time.Time, limit int) ([]*post.Post, error) {
	var posts []*post.Post
	if err := repo.db.WithContext(ctx).
		Where("status = ? AND scheduled_for <= ?", post.StatusScheduled, before).
		Order("scheduled_for ASC").
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (repo *PostRepositoryDatabase) FindTopPosted(ctx context.Context, userID string, limit int) ([]*post.Post, error) {
	var posts []*post.Post
	if err := repo.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, post.StatusPosted).
		Order("(like_count + retweet_count + reply_count + quote_count) DESC").
		Order("COALESCE(impression_count, 0) DESC").
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (repo *PostRepositoryDatabase) FindWithABTest(ctx context.Context, userID string) ([]*post.Post, error) {
	var posts []*post.Post
	if err := repo.db.WithContext(ctx).
		Where("user_id = ? AND ab_test_id IS NOT NULL AND ab_test_id <> '' AND status <> ?", userID, post.StatusDeleted).
		Order("created_at ASC").
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}
