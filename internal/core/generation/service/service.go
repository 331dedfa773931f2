package generationapp

import (
	"context"
	"strings"

	"xpilot/internal/core/apperr"
	"xpilot/internal/core/naturalness"
	"xpilot/internal/core/promotion"
	"xpilot/internal/core/usage"
	userEntity "xpilot/internal/core/user"
	llmPort "xpilot/internal/ports/llm"

	"go.uber.org/zap"
)

type UserLoader interface {
	GetUser(ctx context.Context, userID string) (*userEntity.User, error)
}

type QuotaCounter interface {
	CanProceed(ctx context.Context, userID string, isPro bool, dailyLimit int) usage.Quota
	Increment(ctx context.Context, userID string) (int, error)
}

type PromotionLoader interface {
	Get(ctx context.Context, userID string) (*promotion.Settings, error)
}

type Draft struct {
	Kind             Kind        `json:"kind"`
	Text             string      `json:"text"`
	NaturalnessScore int         `json:"naturalness_score"`
	PromotionApplied bool        `json:"promotion_applied"`
	Provider         string      `json:"provider"`
	Quota            usage.Quota `json:"quota"`
}

// GenerationService تولید پیش‌نویس کوت و ریپلای با رعایت سهمیه روزانه
type GenerationService struct {
	users      UserLoader
	quota      QuotaCounter
	promotions PromotionLoader
	generator  llmPort.TextGenerator
	dailyLimit int
	logger     *zap.Logger
}

func NewGenerationService(
	users UserLoader,
	quota QuotaCounter,
	promotions PromotionLoader,
	generator llmPort.TextGenerator,
	dailyLimit int,
	logger *zap.Logger,
) *GenerationService {
	return &GenerationService{
		users:      users,
		quota:      quota,
		promotions: promotions,
		generator:  generator,
		dailyLimit: dailyLimit,
		logger:     logger,
	}
}

func (s *GenerationService) GenerateQuote(ctx context.Context, userID, targetText string) (*Draft, error) {
	return s.generate(ctx, KindQuote, userID, targetText)
}

func (s *GenerationService) GenerateReply(ctx context.Context, userID, targetText string) (*Draft, error) {
	return s.generate(ctx, KindReply, userID, targetText)
}

func (s *GenerationService) generate(ctx context.Context, kind Kind, userID, targetText string) (*Draft, error) {
	if strings.TrimSpace(targetText) == "" {
		return nil, apperr.New(apperr.KindInvalid, "target text is required")
	}
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	quota := s.quota.CanProceed(ctx, userID, u.IsPro(), s.dailyLimit)
	if !quota.Allowed {
		return nil, apperr.New(apperr.KindQuotaExceeded, "daily generation limit reached")
	}
	if s.generator == nil {
		return nil, apperr.New(apperr.KindExternalService, "no text generation provider configured")
	}

	completion, err := s.generator.Generate(ctx, buildPrompt(kind, targetText))
	if err != nil {
		s.logger.Warn("⚠️ text generation failed", zap.String("provider", s.generator.Name()), zap.Error(err))
		return nil, apperr.Wrap(apperr.KindExternalService, "generate text", err)
	}
	text := cleanCompletion(completion)
	if text == "" {
		return nil, apperr.New(apperr.KindExternalService, "provider returned an empty draft")
	}

	draft := &Draft{
		Kind:             kind,
		Text:             text,
		NaturalnessScore: naturalness.Score(text),
		Provider:         s.generator.Name(),
	}

	if settings, err := s.promotions.Get(ctx, userID); err != nil {
		s.logger.Warn("⚠️ could not load promotion settings", zap.String("userID", userID), zap.Error(err))
	} else {
		res := promotion.Apply(text, settings)
		draft.Text = res.FullText
		draft.PromotionApplied = res.ScorePenalty > 0
		draft.NaturalnessScore = promotion.AdjustScore(draft.NaturalnessScore, res.ScorePenalty)
	}

	if n, err := s.quota.Increment(ctx, userID); err != nil {
		s.logger.Error("❌ could not increment usage counter", zap.String("userID", userID), zap.Error(err))
		if !quota.Unlimited {
			quota.Remaining--
		}
	} else if !quota.Unlimited {
		quota.Remaining = max(0, quota.Limit-n)
	}
	draft.Quota = quota

	return draft, nil
}
