package database

import (
	"context"
	"errors"

	"xpilot/internal/core/usage"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UsageRepositoryDatabase struct {
	db *gorm.DB
}

func NewUsageRepositoryDatabase(db *gorm.DB) *UsageRepositoryDatabase {
	return &UsageRepositoryDatabase{db: db}
}

func (repo *UsageRepositoryDatabase) Get(ctx context.Context, userID, day string) (int, error) {
	var c usage.Counter
	err := repo.db.WithContext(ctx).
		Where("user_id = ? AND usage_date = ?", userID, day).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return c.QuoteRTGenerationCount, nil
}

// Increment یک upsert اتمی و سپس خواندن مقدار جدید
func (repo *UsageRepositoryDatabase) Increment(ctx context.Context, userID, day string) (int, error) {
	uid, err := uuid.FromString(userID)
	if err != nil {
		return 0, err
	}
	row := &usage.Counter{UserID: uid, UsageDate: day, QuoteRTGenerationCount: 1}
	err = repo.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "usage_date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quote_rt_generation_count": gorm.Expr("quote_rt_generation_count + 1"),
		}),
	}).Create(row).Error
	if err != nil {
		return 0, err
	}
	return repo.Get(ctx, userID, day)
}
