package database

import (
	"context"
	"time"

	"xpilot/internal/core/account"
	"xpilot/internal/ports/social"

	"gorm.io/gorm"
)

type AccountRepositoryDatabase struct {
	db *gorm.DB
}

func NewAccountRepositoryDatabase(db *gorm.DB) *AccountRepositoryDatabase {
	return &AccountRepositoryDatabase{db: db}
}

func (repo *AccountRepositoryDatabase) Create(ctx context.Context, a *account.TwitterAccount) (*account.TwitterAccount, error) {
	if err := repo.db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

func (repo *AccountRepositoryDatabase) FindByID(ctx context.Context, id string) (*account.TwitterAccount, error) {
	var a account.TwitterAccount
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, notFound(err, "account")
	}
	return &a, nil
}

func (repo *AccountRepositoryDatabase) FindDefaultByUserID(ctx context.Context, userID string) (*account.TwitterAccount, error) {
	var a account.TwitterAccount
	if err := repo.db.WithContext(ctx).
		Where("user_id = ? AND is_default = ?", userID, true).
		First(&a).Error; err != nil {
		return nil, notFound(err, "account")
	}
	return &a, nil
}

func (repo *AccountRepositoryDatabase) ListByUserID(ctx context.Context, userID string) ([]*account.TwitterAccount, error) {
	var accounts []*account.TwitterAccount
	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (repo *AccountRepositoryDatabase) ClearDefault(ctx context.Context, userID string) error {
	return repo.db.WithContext(ctx).
		Model(&account.TwitterAccount{}).
		Where("user_id = ?", userID).
		Update("is_default", false).Error
}

// SwapTokens compare-and-swap روی refresh_token ذخیره شده
func (repo *AccountRepositoryDatabase) SwapTokens(ctx context.Context, id, oldRefresh string, tokens social.Tokens) (bool, error) {
	updates := map[string]interface{}{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"updated_at":    time.Now(),
	}
	if !tokens.ExpiresAt.IsZero() {
		updates["token_expires_at"] = tokens.ExpiresAt
	}
	res := repo.db.WithContext(ctx).
		Model(&account.TwitterAccount{}).
		Where("id = ? AND refresh_token = ?", id, oldRefresh).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
