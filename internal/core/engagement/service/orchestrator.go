package engagementapp

import (
	"context"
	"strings"
	"time"

	"xpilot/internal/core/apperr"
	"xpilot/internal/core/naturalness"
	postEntity "xpilot/internal/core/post"
	"xpilot/internal/core/ratelimit"
	postPort "xpilot/internal/ports/post"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// Scheduler creates scheduled post rows.
type Scheduler interface {
	CreateScheduled(ctx context.Context, in postPort.CreateInput) (*postEntity.Post, error)
}

type Input struct {
	UserID           string
	AccountID        string
	TargetTweetID    string
	Comment          string
	ScheduledFor     time.Time
	RetweetType      postEntity.RetweetType
	Trend            string
	Purpose          string
	ABTestID         string
	NaturalnessScore *int
}

// Orchestrator ریتوییت، کوت و ریپلای؛ فوری یا زمان‌بندی شده
type Orchestrator struct {
	PostRepository postPort.PostRepository
	scheduler      Scheduler
	publisher      *Publisher
	limiter        *ratelimit.Limiter
	logger         *zap.Logger
	now            func() time.Time
}

func NewOrchestrator(
	postRepo postPort.PostRepository,
	scheduler Scheduler,
	publisher *Publisher,
	limiter *ratelimit.Limiter,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		PostRepository: postRepo,
		scheduler:      scheduler,
		publisher:      publisher,
		limiter:        limiter,
		logger:         logger,
		now:            time.Now,
	}
}

func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

func (o *Orchestrator) PostSimpleRetweet(ctx context.Context, in Input) (*postEntity.Post, error) {
	in.Comment = ""
	return o.postNow(ctx, in, postEntity.RetweetSimple, Action{Kind: ActionRetweet, TargetTweetID: in.TargetTweetID})
}

func (o *Orchestrator) PostQuoteRT(ctx context.Context, in Input) (*postEntity.Post, error) {
	if strings.TrimSpace(in.Comment) == "" {
		return nil, apperr.New(apperr.KindInvalid, "comment is required for a quote")
	}
	return o.postNow(ctx, in, postEntity.RetweetQuote, Action{Kind: ActionQuote, Text: in.Comment, TargetTweetID: in.TargetTweetID})
}

func (o *Orchestrator) PostReply(ctx context.Context, in Input) (*postEntity.Post, error) {
	if strings.TrimSpace(in.Comment) == "" {
		return nil, apperr.New(apperr.KindInvalid, "comment is required for a reply")
	}
	return o.postNow(ctx, in, "", Action{Kind: ActionReply, Text: in.Comment, TargetTweetID: in.TargetTweetID})
}

// ScheduleRetweet schedules a simple or quote retweet.
func (o *Orchestrator) ScheduleRetweet(ctx context.Context, in Input) (*postEntity.Post, error) {
	switch in.RetweetType {
	case postEntity.RetweetSimple:
		in.Comment = ""
	case postEntity.RetweetQuote:
		if strings.TrimSpace(in.Comment) == "" {
			return nil, apperr.New(apperr.KindInvalid, "comment is required for a quote")
		}
	default:
		return nil, apperr.New(apperr.KindInvalid, "retweet_type must be simple or quote")
	}
	return o.schedule(ctx, in, in.RetweetType)
}

func (o *Orchestrator) ScheduleReply(ctx context.Context, in Input) (*postEntity.Post, error) {
	if strings.TrimSpace(in.Comment) == "" {
		return nil, apperr.New(apperr.KindInvalid, "comment is required for a reply")
	}
	return o.schedule(ctx, in, "")
}

func (o *Orchestrator) schedule(ctx context.Context, in Input, rt postEntity.RetweetType) (*postEntity.Post, error) {
	if in.TargetTweetID == "" {
		return nil, apperr.New(apperr.KindInvalid, "target tweet id is required")
	}
	if in.ScheduledFor.IsZero() {
		return nil, apperr.New(apperr.KindInvalid, "scheduled_for is required")
	}
	return o.scheduler.CreateScheduled(ctx, postPort.CreateInput{
		UserID:           in.UserID,
		TwitterAccountID: in.AccountID,
		Text:             in.Comment,
		ScheduledFor:     in.ScheduledFor,
		OriginalTweetID:  in.TargetTweetID,
		RetweetType:      rt,
		Trend:            in.Trend,
		Purpose:          in.Purpose,
		ABTestID:         in.ABTestID,
		NaturalnessScore: in.NaturalnessScore,
	})
}

// postNow runs the cap check, executes action and records a posted row. The
// row is written only after the X call succeeds.
func (o *Orchestrator) postNow(ctx context.Context, in Input, rt postEntity.RetweetType, action Action) (*postEntity.Post, error) {
	if in.TargetTweetID == "" {
		return nil, apperr.New(apperr.KindInvalid, "target tweet id is required")
	}
	uid, err := uuid.FromString(in.UserID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalid, "invalid user id", err)
	}
	if err := o.limiter.Check(ctx, in.UserID); err != nil {
		return nil, err
	}

	acc, err := o.publisher.resolver.Resolve(ctx, in.UserID, in.AccountID)
	if err != nil {
		return nil, err
	}

	tweetID, err := o.publisher.Do(ctx, acc, action)
	if err != nil {
		o.logger.Warn("⚠️ engagement failed", zap.String("userID", in.UserID), zap.String("action", string(action.Kind)), zap.Error(err))
		return nil, err
	}

	now := o.now().UTC()
	target := in.TargetTweetID
	p := &postEntity.Post{
		ID:               uuid.Must(uuid.NewV4()),
		UserID:           uid,
		TwitterAccountID: uuid.NullUUID{UUID: acc.ID, Valid: true},
		Text:             in.Comment,
		Status:           postEntity.StatusPosted,
		OriginalTweetID:  &target,
		TweetID:          &tweetID,
		PostedAt:         &now,
		Trend:            optional(in.Trend),
		Purpose:          optional(in.Purpose),
		ABTestID:         optional(in.ABTestID),
	}
	if rt != "" {
		p.RetweetType = &rt
	}
	switch {
	case in.NaturalnessScore != nil:
		p.NaturalnessScore = in.NaturalnessScore
	case in.Comment != "":
		score := naturalness.Score(in.Comment)
		p.NaturalnessScore = &score
	}

	created, err := o.PostRepository.Create(ctx, p)
	if err != nil {
		o.logger.Error("❌ engagement published but not recorded", zap.String("userID", in.UserID), zap.String("tweetID", tweetID), zap.Error(err))
		return nil, apperr.Wrap(apperr.KindPersistence, "record engagement", err)
	}
	o.logger.Info("✅ Engagement posted", zap.String("postID", created.ID.String()), zap.String("action", string(action.Kind)), zap.String("tweetID", tweetID))
	return created, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
