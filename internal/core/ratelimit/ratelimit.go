// Package ratelimit caps engagement actions (retweets, quotes, replies) per
// user over a rolling window.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"xpilot/internal/core/apperr"
)

const (
	DefaultWindow = 24 * time.Hour
	DefaultMax    = 10
)

// EngagementCounter counts a user's engagement rows created at or after since.
type EngagementCounter interface {
	CountEngagementsSince(ctx context.Context, userID string, since time.Time) (int64, error)
}

type Limiter struct {
	counter EngagementCounter
	window  time.Duration
	max     int
	now     func() time.Time
}

func New(counter EngagementCounter, window time.Duration, max int) *Limiter {
	if window <= 0 {
		window = DefaultWindow
	}
	if max <= 0 {
		max = DefaultMax
	}
	return &Limiter{counter: counter, window: window, max: max, now: time.Now}
}

func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Check returns a RateLimitExceeded error when the user already has max or
// more engagement rows inside the window.
func (l *Limiter) Check(ctx context.Context, userID string) error {
	since := l.now().Add(-l.window)
	n, err := l.counter.CountEngagementsSince(ctx, userID, since)
	if err != nil {
		return apperr.Wrap(apperr.KindPersistence, "count recent engagements", err)
	}
	if n >= int64(l.max) {
		return apperr.New(apperr.KindRateLimitExceeded, fmt.Sprintf("%d engagements in the last %s", n, l.window))
	}
	return nil
}
