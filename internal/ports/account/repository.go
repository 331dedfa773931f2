package account

import (
	"context"

	"xpilot/internal/core/account"
	"xpilot/internal/ports/social"
)

type AccountRepository interface {
	Create(ctx context.Context, a *account.TwitterAccount) (*account.TwitterAccount, error)
	FindByID(ctx context.Context, id string) (*account.TwitterAccount, error)
	FindDefaultByUserID(ctx context.Context, userID string) (*account.TwitterAccount, error)
	ListByUserID(ctx context.Context, userID string) ([]*account.TwitterAccount, error)
	ClearDefault(ctx context.Context, userID string) error
	// SwapTokens stores tokens only if the stored refresh token still equals
	// oldRefresh. It reports whether the swap happened.
	SwapTokens(ctx context.Context, id, oldRefresh string, tokens social.Tokens) (bool, error)
}

type ConnectInput struct {
	UserID       string
	XUserID      string
	Username     string
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	MakeDefault  bool
}
