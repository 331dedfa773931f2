package database

import (
	"xpilot/internal/core/account"
	"xpilot/internal/core/post"
	"xpilot/internal/core/promotion"
	"xpilot/internal/core/usage"
	"xpilot/internal/core/user"

	"gorm.io/gorm"
)

// AutoMigrate اعمال مایگریشن برای مدل‌ها
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&user.User{},
		&account.TwitterAccount{},
		&post.Post{},
		&usage.Counter{},
		&promotion.Settings{},
	)
}
