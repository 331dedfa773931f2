package accountapp

import (
	"context"
	"errors"
	"strings"
	"time"

	"xpilot/internal/core/account"
	"xpilot/internal/core/apperr"
	accountPort "xpilot/internal/ports/account"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

type AccountService struct {
	AccountRepository accountPort.AccountRepository
	logger            *zap.Logger
}

func NewAccountService(repo accountPort.AccountRepository, logger *zap.Logger) *AccountService {
	return &AccountService{AccountRepository: repo, logger: logger}
}

// ConnectAccount stores an X account for the user. The first account a user
// connects becomes the default one.
func (s *AccountService) ConnectAccount(ctx context.Context, in accountPort.ConnectInput) (*account.TwitterAccount, error) {
	uid, err := uuid.FromString(in.UserID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalid, "invalid user id", err)
	}
	if strings.TrimSpace(in.XUserID) == "" || strings.TrimSpace(in.AccessToken) == "" {
		return nil, apperr.New(apperr.KindInvalid, "x_user_id and access_token are required")
	}

	existing, err := s.AccountRepository.ListByUserID(ctx, in.UserID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "list accounts", err)
	}
	makeDefault := in.MakeDefault || len(existing) == 0
	if makeDefault && len(existing) > 0 {
		if err := s.AccountRepository.ClearDefault(ctx, in.UserID); err != nil {
			return nil, apperr.Wrap(apperr.KindPersistence, "clear default account", err)
		}
	}

	a := &account.TwitterAccount{
		ID:           uuid.Must(uuid.NewV4()),
		UserID:       uid,
		XUserID:      in.XUserID,
		Username:     in.Username,
		AccessToken:  in.AccessToken,
		RefreshToken: in.RefreshToken,
		IsDefault:    makeDefault,
	}
	if in.ExpiresIn > 0 {
		exp := time.Now().Add(time.Duration(in.ExpiresIn) * time.Second)
		a.TokenExpiresAt = &exp
	}

	created, err := s.AccountRepository.Create(ctx, a)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "create account", err)
	}
	s.logger.Info("✅ X account connected", zap.String("userID", in.UserID), zap.String("accountID", created.ID.String()))
	return created, nil
}

func (s *AccountService) ListAccounts(ctx context.Context, userID string) ([]*account.TwitterAccount, error) {
	accounts, err := s.AccountRepository.ListByUserID(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "list accounts", err)
	}
	return accounts, nil
}

// Resolve returns accountID if it belongs to userID, or the user's default
// account when accountID is empty.
func (s *AccountService) Resolve(ctx context.Context, userID, accountID string) (*account.TwitterAccount, error) {
	var (
		a   *account.TwitterAccount
		err error
	)
	if accountID == "" {
		a, err = s.AccountRepository.FindDefaultByUserID(ctx, userID)
	} else {
		a, err = s.AccountRepository.FindByID(ctx, accountID)
	}
	if err != nil {
		if errors.Is(err, apperr.NotFound) {
			return nil, apperr.New(apperr.KindNotFound, "no connected x account")
		}
		return nil, apperr.Wrap(apperr.KindPersistence, "load account", err)
	}
	if a.UserID.String() != userID {
		return nil, apperr.New(apperr.KindForbidden, "account belongs to another user")
	}
	return a, nil
}
