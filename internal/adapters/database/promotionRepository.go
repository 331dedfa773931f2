package database

import (
	"context"
	"errors"

	"xpilot/internal/core/promotion"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PromotionRepositoryDatabase struct {
	db *gorm.DB
}

func NewPromotionRepositoryDatabase(db *gorm.DB) *PromotionRepositoryDatabase {
	return &PromotionRepositoryDatabase{db: db}
}

func (repo *PromotionRepositoryDatabase) Find(ctx context.Context, userID string) (*promotion.Settings, error) {
	var s promotion.Settings
	err := repo.db.WithContext(ctx).Where("user_id = ?", userID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (repo *PromotionRepositoryDatabase) Upsert(ctx context.Context, s *promotion.Settings) error {
	return repo.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"enabled", "product_name", "link_url", "template", "updated_at"}),
	}).Create(s).Error
}
