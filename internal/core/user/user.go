package user

import (
	"time"

	"github.com/gofrs/uuid"
)

type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

type User struct {
	ID        uuid.UUID `gorm:"primaryKey;type:char(36)"`
	Name      string    `gorm:"not null"`
	Username  string    `gorm:"type:varchar(191);unique;not null"`
	Password  string    `gorm:"not null"`
	Plan      Plan      `gorm:"type:varchar(10);not null;default:free"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (u *User) IsPro() bool { return u.Plan == PlanPro }

func (p Plan) Valid() bool { return p == PlanFree || p == PlanPro }
