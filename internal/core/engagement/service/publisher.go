package engagementapp

import (
	"context"
	"errors"
	"time"

	"xpilot/internal/core/account"
	"xpilot/internal/core/apperr"
	postEntity "xpilot/internal/core/post"
	accountPort "xpilot/internal/ports/account"
	"xpilot/internal/ports/social"

	"go.uber.org/zap"
)

const (
	tokenPersistAttempts = 3
	tokenPersistBackoff  = 100 * time.Millisecond
	tokenPersistTimeout  = 5 * time.Second
)

type ActionKind string

const (
	ActionPost    ActionKind = "post"
	ActionRetweet ActionKind = "retweet"
	ActionQuote   ActionKind = "quote"
	ActionReply   ActionKind = "reply"
)

// Action is one call against the X API.
type Action struct {
	Kind          ActionKind
	Text          string
	TargetTweetID string
}

// ActionFor derives the X action a post_history row stands for.
func ActionFor(p *postEntity.Post) Action {
	a := Action{Kind: ActionPost, Text: p.Text}
	if !p.IsEngagement() {
		return a
	}
	a.TargetTweetID = *p.OriginalTweetID
	switch {
	case p.RetweetType == nil:
		a.Kind = ActionReply
	case *p.RetweetType == postEntity.RetweetSimple:
		a.Kind = ActionRetweet
	default:
		a.Kind = ActionQuote
	}
	return a
}

// AccountResolver picks the X account acting for a user.
type AccountResolver interface {
	Resolve(ctx context.Context, userID, accountID string) (*account.TwitterAccount, error)
}

// Publisher اجرای اکشن‌ها روی X با تمدید توکن و یک بار تلاش مجدد
type Publisher struct {
	Accounts accountPort.AccountRepository
	resolver AccountResolver
	client   social.Client
	logger   *zap.Logger
}

func NewPublisher(accounts accountPort.AccountRepository, resolver AccountResolver, client social.Client, logger *zap.Logger) *Publisher {
	return &Publisher{
		Accounts: accounts,
		resolver: resolver,
		client:   client,
		logger:   logger,
	}
}

// Execute publishes a stored post row. A simple retweet yields no new id on
// X, so the target id is returned instead.
func (p *Publisher) Execute(ctx context.Context, post *postEntity.Post) (string, error) {
	accountID := ""
	if post.TwitterAccountID.Valid {
		accountID = post.TwitterAccountID.UUID.String()
	}
	acc, err := p.resolver.Resolve(ctx, post.UserID.String(), accountID)
	if err != nil {
		return "", err
	}
	return p.Do(ctx, acc, ActionFor(post))
}

// Do runs action as acc and returns the resulting tweet id.
func (p *Publisher) Do(ctx context.Context, acc *account.TwitterAccount, action Action) (string, error) {
	var tweetID string
	err := p.withToken(ctx, acc, func(token string) error {
		var err error
		switch action.Kind {
		case ActionRetweet:
			if err = p.client.Retweet(ctx, token, acc.XUserID, action.TargetTweetID); err == nil {
				tweetID = action.TargetTweetID
			}
		case ActionQuote:
			tweetID, err = p.client.CreatePost(ctx, token, social.CreatePostRequest{Text: action.Text, QuoteTweetID: action.TargetTweetID})
		case ActionReply:
			tweetID, err = p.client.CreatePost(ctx, token, social.CreatePostRequest{Text: action.Text, InReplyToID: action.TargetTweetID})
		default:
			tweetID, err = p.client.CreatePost(ctx, token, social.CreatePostRequest{Text: action.Text})
		}
		return err
	})
	if err != nil {
		return "", err
	}
	return tweetID, nil
}

// FetchMetrics reads public metrics for tweetID using the same refresh policy.
func (p *Publisher) FetchMetrics(ctx context.Context, acc *account.TwitterAccount, tweetID string) (*social.Metrics, error) {
	var m *social.Metrics
	err := p.withToken(ctx, acc, func(token string) error {
		var err error
		m, err = p.client.GetMetrics(ctx, token, tweetID)
		return err
	})
	return m, err
}

func (p *Publisher) withToken(ctx context.Context, acc *account.TwitterAccount, call func(token string) error) error {
	err := call(acc.AccessToken)
	if err == nil {
		return nil
	}
	if !errors.Is(err, social.ErrUnauthorized) {
		return apperr.Wrap(apperr.KindExternalService, "x api call", err)
	}
	if acc.RefreshToken == "" {
		return apperr.Wrap(apperr.KindAuthExpired, "access token expired and no refresh token stored", err)
	}

	p.logger.Info("🔄 access token rejected, refreshing", zap.String("accountID", acc.ID.String()))
	if err := p.refresh(ctx, acc); err != nil {
		return err
	}

	if err := call(acc.AccessToken); err != nil {
		if errors.Is(err, social.ErrUnauthorized) {
			return apperr.Wrap(apperr.KindAuthExpired, "unauthorized after token refresh", err)
		}
		return apperr.Wrap(apperr.KindExternalService, "x api call after token refresh", err)
	}
	return nil
}

// refresh rotates acc's token pair. The stored pair is replaced only if its
// refresh token is still the one we used; otherwise the pair written by the
// concurrent refresher is adopted.
func (p *Publisher) refresh(ctx context.Context, acc *account.TwitterAccount) error {
	old := acc.RefreshToken
	tokens, err := p.client.RefreshToken(ctx, old)
	if err != nil {
		if stored, ferr := p.Accounts.FindByID(ctx, acc.ID.String()); ferr == nil && stored.RefreshToken != old {
			p.logger.Info("🔄 token already rotated by another request", zap.String("accountID", acc.ID.String()))
			adopt(acc, stored)
			return nil
		}
		return apperr.Wrap(apperr.KindAuthExpired, "refresh x token", err)
	}
	if tokens.RefreshToken == "" {
		tokens.RefreshToken = old
	}

	swapped, err := p.swapTokens(ctx, acc.ID.String(), old, *tokens)
	if err != nil {
		// the old refresh token is already spent at X; this request still
		// goes out on the new pair, later ones will need a reconnect
		p.logger.Error("❌ could not persist refreshed tokens", zap.String("accountID", acc.ID.String()), zap.Error(err))
	} else if !swapped {
		stored, ferr := p.Accounts.FindByID(ctx, acc.ID.String())
		if ferr == nil {
			adopt(acc, stored)
			return nil
		}
		p.logger.Warn("⚠️ could not reload rotated tokens", zap.String("accountID", acc.ID.String()), zap.Error(ferr))
	}

	acc.AccessToken = tokens.AccessToken
	acc.RefreshToken = tokens.RefreshToken
	if !tokens.ExpiresAt.IsZero() {
		exp := tokens.ExpiresAt
		acc.TokenExpiresAt = &exp
	}
	return nil
}

// swapTokens writes the rotated pair, retrying transient store errors on a
// context that outlives the request.
func (p *Publisher) swapTokens(ctx context.Context, accountID, oldRefresh string, tokens social.Tokens) (bool, error) {
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), tokenPersistTimeout)
	defer cancel()

	var err error
	for attempt := 1; attempt <= tokenPersistAttempts; attempt++ {
		var swapped bool
		swapped, err = p.Accounts.SwapTokens(sctx, accountID, oldRefresh, tokens)
		if err == nil {
			return swapped, nil
		}
		p.logger.Warn("⚠️ token swap failed", zap.String("accountID", accountID), zap.Int("attempt", attempt), zap.Error(err))
		if attempt == tokenPersistAttempts {
			break
		}
		select {
		case <-sctx.Done():
			return false, err
		case <-time.After(time.Duration(attempt) * tokenPersistBackoff):
		}
	}
	return false, err
}

func adopt(dst, src *account.TwitterAccount) {
	dst.AccessToken = src.AccessToken
	dst.RefreshToken = src.RefreshToken
	dst.TokenExpiresAt = src.TokenExpiresAt
}
