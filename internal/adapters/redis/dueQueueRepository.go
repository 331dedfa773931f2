package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const DueKey = "schedule:due"

// DueQueueRedis صف پست‌های زمان‌بندی شده در یک ZSET با امتیاز زمان یونیکس
type DueQueueRedis struct {
	Client *redis.Client
	logger *zap.Logger
}

func NewDueQueueRedis(client *redis.Client, logger *zap.Logger) *DueQueueRedis {
	return &DueQueueRedis{
		Client: client,
		logger: logger,
	}
}

// Add inserts postID or moves it to the new time.
func (r *DueQueueRedis) Add(ctx context.Context, postID string, at time.Time) error {
	z := &redis.Z{
		Score:  float64(at.Unix()),
		Member: postID,
	}
	if err := r.Client.ZAdd(ctx, DueKey, z).Err(); err != nil {
		return err
	}
	r.logger.Debug("Added post to due queue", zap.String("postID", postID), zap.Time("at", at))
	return nil
}

func (r *DueQueueRedis) Remove(ctx context.Context, postID string) error {
	return r.Client.ZRem(ctx, DueKey, postID).Err()
}

// ClaimDue فقط نمونه‌ای که ZREM آن 1 برگرداند مالک پست است
func (r *DueQueueRedis) ClaimDue(ctx context.Context, now time.Time, limit int) ([]string, error) {
	ids, err := r.Client.ZRangeByScore(ctx, DueKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.Unix(), 10),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, err
	}

	claimed := make([]string, 0, len(ids))
	for _, id := range ids {
		n, err := r.Client.ZRem(ctx, DueKey, id).Result()
		if err != nil {
			r.logger.Warn("⚠️ could not claim due post", zap.String("postID", id), zap.Error(err))
			continue
		}
		if n == 1 {
			claimed = append(claimed, id)
		}
	}
	return claimed, nil
}
