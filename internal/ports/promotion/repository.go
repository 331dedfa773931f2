package promotion

import (
	"context"

	"xpilot/internal/core/promotion"
)

type PromotionRepository interface {
	// Find returns nil, nil when the user has no settings row.
	Find(ctx context.Context, userID string) (*promotion.Settings, error)
	Upsert(ctx context.Context, s *promotion.Settings) error
}

type UpdateInput struct {
	Enabled     bool   `json:"enabled"`
	ProductName string `json:"product_name"`
	LinkURL     string `json:"link_url"`
	Template    string `json:"template"`
}
