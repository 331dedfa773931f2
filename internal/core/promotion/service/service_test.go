package promotionapp

import (
	"context"
	"errors"
	"testing"

	"xpilot/internal/core/apperr"
	"xpilot/internal/core/promotion"
	promotionPort "xpilot/internal/ports/promotion"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memPromotionRepo struct{ rows map[string]*promotion.Settings }

func (r *memPromotionRepo) Find(_ context.Context, userID string) (*promotion.Settings, error) {
	return r.rows[userID], nil
}

func (r *memPromotionRepo) Upsert(_ context.Context, s *promotion.Settings) error {
	r.rows[s.UserID.String()] = s
	return nil
}

func TestGetDefaultsToDisabled(t *testing.T) {
	svc := NewPromotionService(&memPromotionRepo{rows: map[string]*promotion.Settings{}}, zap.NewNop())
	s, err := svc.Get(context.Background(), uuid.Must(uuid.NewV4()).String())
	require.NoError(t, err)
	assert.False(t, s.Enabled)
	assert.Contains(t, s.Template, promotion.LinkPlaceholder)
}

func TestUpdateValidatesLink(t *testing.T) {
	svc := NewPromotionService(&memPromotionRepo{rows: map[string]*promotion.Settings{}}, zap.NewNop())
	userID := uuid.Must(uuid.NewV4()).String()

	for _, link := range []string{"", "example.com", "ftp://example.com", "https://"} {
		_, err := svc.Update(context.Background(), userID, promotionPort.UpdateInput{Enabled: true, LinkURL: link})
		assert.True(t, errors.Is(err, apperr.Invalid), link)
	}

	// disabled settings keep whatever link was typed
	_, err := svc.Update(context.Background(), userID, promotionPort.UpdateInput{Enabled: false, LinkURL: "draft"})
	assert.NoError(t, err)
}

func TestUpdateRoundTrip(t *testing.T) {
	repo := &memPromotionRepo{rows: map[string]*promotion.Settings{}}
	svc := NewPromotionService(repo, zap.NewNop())
	userID := uuid.Must(uuid.NewV4()).String()

	_, err := svc.Update(context.Background(), userID, promotionPort.UpdateInput{
		Enabled:     true,
		ProductName: "Xpilot",
		LinkURL:     "https://xpilot.test/signup",
		Template:    "Built with [link]",
	})
	require.NoError(t, err)

	s, err := svc.Get(context.Background(), userID)
	require.NoError(t, err)
	res := promotion.Apply("Shipped it.", s)
	assert.Equal(t, "Shipped it.\n\nBuilt with https://xpilot.test/signup", res.FullText)
}
