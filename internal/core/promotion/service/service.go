package promotionapp

import (
	"context"
	"net/url"
	"strings"

	"xpilot/internal/core/apperr"
	"xpilot/internal/core/promotion"
	promotionPort "xpilot/internal/ports/promotion"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

const defaultTemplate = "Try " + promotion.LinkPlaceholder

type PromotionService struct {
	PromotionRepository promotionPort.PromotionRepository
	logger              *zap.Logger
}

func NewPromotionService(repo promotionPort.PromotionRepository, logger *zap.Logger) *PromotionService {
	return &PromotionService{PromotionRepository: repo, logger: logger}
}

// Get returns the user's settings, or disabled defaults when none exist.
func (s *PromotionService) Get(ctx context.Context, userID string) (*promotion.Settings, error) {
	uid, err := uuid.FromString(userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalid, "invalid user id", err)
	}
	settings, err := s.PromotionRepository.Find(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "load promotion settings", err)
	}
	if settings == nil {
		return &promotion.Settings{UserID: uid, Template: defaultTemplate}, nil
	}
	return settings, nil
}

func (s *PromotionService) Update(ctx context.Context, userID string, in promotionPort.UpdateInput) (*promotion.Settings, error) {
	uid, err := uuid.FromString(userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalid, "invalid user id", err)
	}
	if in.Enabled {
		if !validLink(in.LinkURL) {
			return nil, apperr.New(apperr.KindInvalid, "link_url must be an absolute http(s) url")
		}
		if strings.TrimSpace(in.Template) == "" {
			in.Template = defaultTemplate
		}
	}

	settings := &promotion.Settings{
		UserID:      uid,
		Enabled:     in.Enabled,
		ProductName: strings.TrimSpace(in.ProductName),
		LinkURL:     strings.TrimSpace(in.LinkURL),
		Template:    in.Template,
	}
	if err := s.PromotionRepository.Upsert(ctx, settings); err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "save promotion settings", err)
	}
	s.logger.Info("✅ Promotion settings saved", zap.String("userID", userID), zap.Bool("enabled", in.Enabled))
	return settings, nil
}

func validLink(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
