package database

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// DueQueueDatabase صف زمان‌بندی مبتنی بر جدول post_history وقتی Redis در دسترس نیست.
// Add and Remove are no-ops since the table itself is the queue. Claims are
// not exclusive across instances; run a single dispatcher in this mode.
type DueQueueDatabase struct {
	posts *PostRepositoryDatabase
}

func NewDueQueueDatabase(db *gorm.DB) *DueQueueDatabase {
	return &DueQueueDatabase{posts: NewPostRepositoryDatabase(db)}
}

func (q *DueQueueDatabase) Add(context.Context, string, time.Time) error { return nil }

func (q *DueQueueDatabase) Remove(context.Context, string) error { return nil }

func (q *DueQueueDatabase) ClaimDue(ctx context.Context, now time.Time, limit int) ([]string, error) {
	due, err := q.posts.FindDue(ctx, now, limit)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(due))
	for _, p := range due {
		ids = append(ids, p.ID.String())
	}
	return ids, nil
}
