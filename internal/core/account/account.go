package account

import (
	"time"

	"github.com/gofrs/uuid"
)

// TwitterAccount اکانت X متصل شده به کاربر به همراه توکن‌های OAuth2
type TwitterAccount struct {
	ID             uuid.UUID  `gorm:"primaryKey;type:char(36)" json:"id"`
	UserID         uuid.UUID  `gorm:"type:char(36);not null;index" json:"user_id"`
	XUserID        string     `gorm:"type:varchar(64);not null" json:"x_user_id"`
	Username       string     `gorm:"type:varchar(255);not null" json:"username"`
	AccessToken    string     `gorm:"type:text;not null" json:"-"`
	RefreshToken   string     `gorm:"type:text" json:"-"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty"`
	IsDefault      bool       `gorm:"not null;default:false" json:"is_default"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (TwitterAccount) TableName() string { return "twitter_accounts" }
