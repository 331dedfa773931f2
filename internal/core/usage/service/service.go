package usageapp

import (
	"context"
	"time"

	"xpilot/internal/core/usage"
	usagePort "xpilot/internal/ports/usage"

	"go.uber.org/zap"
)

// UsageService شمارنده سهمیه روزانه کاربران رایگان
type UsageService struct {
	UsageRepository usagePort.UsageRepository
	logger          *zap.Logger
	now             func() time.Time
}

func NewUsageService(repo usagePort.UsageRepository, logger *zap.Logger) *UsageService {
	return &UsageService{
		UsageRepository: repo,
		logger:          logger,
		now:             time.Now,
	}
}

// WithClock replaces the time source.
func (s *UsageService) WithClock(now func() time.Time) *UsageService {
	s.now = now
	return s
}

// CountToday returns today's count. Storage errors are logged and read as 0.
func (s *UsageService) CountToday(ctx context.Context, userID string) int {
	n, err := s.UsageRepository.Get(ctx, userID, usage.Day(s.now()))
	if err != nil {
		s.logger.Error("❌ could not read usage counter", zap.String("userID", userID), zap.Error(err))
		return 0
	}
	return n
}

// Increment records one generation for today.
func (s *UsageService) Increment(ctx context.Context, userID string) (int, error) {
	return s.UsageRepository.Increment(ctx, userID, usage.Day(s.now()))
}

// CanProceed checks the daily quota. Pro users are never limited.
func (s *UsageService) CanProceed(ctx context.Context, userID string, isPro bool, dailyLimit int) usage.Quota {
	if isPro {
		return usage.Quota{Allowed: true, Remaining: -1, Limit: -1, Unlimited: true}
	}
	remaining := dailyLimit - s.CountToday(ctx, userID)
	if remaining < 0 {
		remaining = 0
	}
	return usage.Quota{
		Allowed:   remaining > 0,
		Remaining: remaining,
		Limit:     dailyLimit,
	}
}
