package user

import (
	"context"

	"xpilot/internal/core/user"
)

// UserRepository پورت برای ذخیره‌سازی و بازیابی کاربران
type UserRepository interface {
	Create(ctx context.Context, u *user.User) (*user.User, error)
	FindByID(ctx context.Context, id string) (*user.User, error)
	FindByUsername(ctx context.Context, username string) (*user.User, error)
	UpdatePlan(ctx context.Context, id string, plan user.Plan) error
}

// DTOها برای UseCase
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

type UserDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Plan     string `json:"plan"`
}

func ToDTO(u *user.User) *UserDTO {
	return &UserDTO{
		ID:       u.ID.String(),
		Name:     u.Name,
		Username: u.Username,
		Plan:     string(u.Plan),
	}
}
