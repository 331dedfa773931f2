package duequeue

import (
	"context"
	"time"
)

// DueQueue نگهداری شناسه پست‌های زمان‌بندی شده به ترتیب زمان اجرا
type DueQueue interface {
	Add(ctx context.Context, postID string, at time.Time) error
	Remove(ctx context.Context, postID string) error
	// ClaimDue returns up to limit ids due at or before now. Each id is
	// handed to exactly one caller.
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]string, error)
}
