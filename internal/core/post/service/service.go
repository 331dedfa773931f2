package postapp

import (
	"context"
	"errors"
	"strings"
	"time"

	"xpilot/internal/core/apperr"
	"xpilot/internal/core/naturalness"
	postEntity "xpilot/internal/core/post"
	"xpilot/internal/core/ratelimit"
	duePort "xpilot/internal/ports/duequeue"
	eventPort "xpilot/internal/ports/events"
	postPort "xpilot/internal/ports/post"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// recordTimeout bounds status writes made after the X call returns.
const recordTimeout = 10 * time.Second

// PostService چرخه عمر پست‌های زمان‌بندی شده
type PostService struct {
	PostRepository postPort.PostRepository
	Queue          duePort.DueQueue
	Executor       postPort.Executor
	Events         eventPort.Publisher
	limiter        *ratelimit.Limiter
	logger         *zap.Logger
	now            func() time.Time
}

func NewPostService(
	postRepo postPort.PostRepository,
	queue duePort.DueQueue,
	executor postPort.Executor,
	events eventPort.Publisher,
	limiter *ratelimit.Limiter,
	logger *zap.Logger,
) *PostService {
	if events == nil {
		events = eventPort.Nop{}
	}
	return &PostService{
		PostRepository: postRepo,
		Queue:          queue,
		Executor:       executor,
		Events:         events,
		limiter:        limiter,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *PostService) WithClock(now func() time.Time) *PostService {
	s.now = now
	return s
}

// CreateScheduled ثبت یک پست با وضعیت scheduled و افزودن آن به صف زمان‌بندی
func (s *PostService) CreateScheduled(ctx context.Context, in postPort.CreateInput) (*postEntity.Post, error) {
	uid, err := uuid.FromString(in.UserID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalid, "invalid user id", err)
	}
	if in.ScheduledFor.IsZero() {
		return nil, apperr.New(apperr.KindInvalid, "scheduled_for is required")
	}
	if in.RetweetType != "" && !in.RetweetType.Valid() {
		return nil, apperr.New(apperr.KindInvalid, "retweet_type must be simple or quote")
	}
	isSimpleRetweet := in.RetweetType == postEntity.RetweetSimple
	if strings.TrimSpace(in.Text) == "" && !isSimpleRetweet {
		return nil, apperr.New(apperr.KindInvalid, "text is required")
	}
	if in.RetweetType != "" && in.OriginalTweetID == "" {
		return nil, apperr.New(apperr.KindInvalid, "original_tweet_id is required for retweets")
	}

	p := &postEntity.Post{
		ID:           uuid.Must(uuid.NewV4()),
		UserID:       uid,
		Text:         in.Text,
		Status:       postEntity.StatusScheduled,
		ScheduledFor: timePtr(in.ScheduledFor.UTC()),
		Trend:        optional(in.Trend),
		Purpose:      optional(in.Purpose),
		ABTestID:     optional(in.ABTestID),
	}
	if in.TwitterAccountID != "" {
		aid, err := uuid.FromString(in.TwitterAccountID)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInvalid, "invalid account id", err)
		}
		p.TwitterAccountID = uuid.NullUUID{UUID: aid, Valid: true}
	}
	if in.OriginalTweetID != "" {
		p.OriginalTweetID = optional(in.OriginalTweetID)
	}
	if in.RetweetType != "" {
		rt := in.RetweetType
		p.RetweetType = &rt
	}
	switch {
	case in.NaturalnessScore != nil:
		p.NaturalnessScore = in.NaturalnessScore
	case !isSimpleRetweet:
		score := naturalness.Score(in.Text)
		p.NaturalnessScore = &score
	}

	if p.IsEngagement() && s.limiter != nil {
		if err := s.limiter.Check(ctx, in.UserID); err != nil {
			return nil, err
		}
	}

	if in.ScheduledFor.Before(s.now()) {
		s.logger.Warn("⚠️ scheduling a post in the past", zap.String("userID", in.UserID), zap.Time("scheduledFor", in.ScheduledFor))
	}

	created, err := s.PostRepository.Create(ctx, p)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "create scheduled post", err)
	}
	s.enqueue(ctx, created)

	s.logger.Info("✅ Scheduled post created", zap.String("postID", created.ID.String()), zap.Time("scheduledFor", *created.ScheduledFor))
	return created, nil
}

// Reschedule تغییر زمان اجرای یک پست؛ فقط در وضعیت scheduled
func (s *PostService) Reschedule(ctx context.Context, userID, postID string, at time.Time) (*postEntity.Post, error) {
	if at.IsZero() {
		return nil, apperr.New(apperr.KindInvalid, "scheduled_for is required")
	}
	p, err := s.Get(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if p.Status != postEntity.StatusScheduled {
		return nil, apperr.New(apperr.KindConflict, "only scheduled posts can be rescheduled")
	}
	if at.Before(s.now()) {
		s.logger.Warn("⚠️ rescheduling a post into the past", zap.String("postID", postID), zap.Time("scheduledFor", at))
	}

	p.ScheduledFor = timePtr(at.UTC())
	if err := s.update(ctx, p, postEntity.StatusScheduled); err != nil {
		return nil, err
	}
	s.enqueue(ctx, p)
	return p, nil
}

// UpdateText edits a scheduled post and recomputes its naturalness score.
func (s *PostService) UpdateText(ctx context.Context, userID, postID, text string) (*postEntity.Post, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperr.New(apperr.KindInvalid, "text is required")
	}
	p, err := s.Get(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if p.Status != postEntity.StatusScheduled {
		return nil, apperr.New(apperr.KindConflict, "only scheduled posts can be edited")
	}

	p.Text = text
	score := naturalness.Score(text)
	p.NaturalnessScore = &score
	if err := s.update(ctx, p, postEntity.StatusScheduled); err != nil {
		return nil, err
	}
	return p, nil
}

// PostNow publishes a scheduled post immediately on behalf of its owner.
func (s *PostService) PostNow(ctx context.Context, userID, postID string) (*postEntity.Post, error) {
	p, err := s.Get(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	return s.execute(ctx, p)
}

// Execute publishes a due post. Used by the dispatcher, which has already
// taken postID off the due queue; a transient load error puts it back.
func (s *PostService) Execute(ctx context.Context, postID string) (*postEntity.Post, error) {
	p, err := s.find(ctx, postID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindPersistence {
			s.requeue(ctx, postID, s.now())
		}
		return nil, err
	}
	return s.execute(ctx, p)
}

func (s *PostService) execute(ctx context.Context, p *postEntity.Post) (*postEntity.Post, error) {
	if p.Status != postEntity.StatusScheduled {
		return nil, apperr.New(apperr.KindConflict, "post is "+string(p.Status))
	}
	s.dequeue(ctx, p.ID.String())

	tweetID, execErr := s.Executor.Execute(ctx, p)

	// the outcome is recorded even when ctx ran out during the X call
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	if execErr != nil {
		msg := execErr.Error()
		scheduledFor := p.ScheduledFor
		p.Status = postEntity.StatusFailed
		p.LastError = &msg
		if err := s.update(rctx, p, postEntity.StatusScheduled); err != nil {
			s.logger.Error("❌ could not mark post failed", zap.String("postID", p.ID.String()), zap.Error(err))
			if apperr.KindOf(err) == apperr.KindPersistence && scheduledFor != nil {
				s.requeue(rctx, p.ID.String(), *scheduledFor)
			}
			return nil, execErr
		}
		s.logger.Warn("⚠️ post publish failed", zap.String("postID", p.ID.String()), zap.Error(execErr))
		s.publish(rctx, eventPort.PostFailed, p, msg)
		return p, execErr
	}

	now := s.now().UTC()
	p.Status = postEntity.StatusPosted
	p.TweetID = &tweetID
	p.PostedAt = &now
	p.LastError = nil
	if err := s.update(rctx, p, postEntity.StatusScheduled); err != nil {
		s.logger.Error("❌ post published but row not updated", zap.String("postID", p.ID.String()), zap.String("tweetID", tweetID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("✅ Post published", zap.String("postID", p.ID.String()), zap.String("tweetID", tweetID))
	s.publish(rctx, eventPort.PostPosted, p, "")
	return p, nil
}

// Delete حذف نرم: وضعیت deleted و حذف از صف زمان‌بندی
func (s *PostService) Delete(ctx context.Context, userID, postID string) error {
	p, err := s.Get(ctx, userID, postID)
	if err != nil {
		return err
	}
	from := p.Status
	if !from.CanTransition(postEntity.StatusDeleted) {
		return apperr.New(apperr.KindConflict, "post is already deleted")
	}
	p.Status = postEntity.StatusDeleted
	if err := s.update(ctx, p, from); err != nil {
		return err
	}
	if from == postEntity.StatusScheduled {
		s.dequeue(ctx, postID)
	}
	s.publish(ctx, eventPort.PostDeleted, p, "")
	return nil
}

// List returns the user's posts, optionally filtered by status. An empty
// status lists everything except deleted rows.
func (s *PostService) List(ctx context.Context, userID string, status postEntity.Status) ([]*postEntity.Post, error) {
	if status != "" && !status.Valid() {
		return nil, apperr.New(apperr.KindInvalid, "unknown status "+string(status))
	}
	posts, err := s.PostRepository.FindByUserID(ctx, userID, status)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "list posts", err)
	}
	return posts, nil
}

// Get loads a post and checks it belongs to userID.
func (s *PostService) Get(ctx context.Context, userID, postID string) (*postEntity.Post, error) {
	p, err := s.find(ctx, postID)
	if err != nil {
		return nil, err
	}
	if p.UserID.String() != userID {
		return nil, apperr.New(apperr.KindForbidden, "post belongs to another user")
	}
	return p, nil
}

// RequeueScheduled rebuilds the due queue from the database.
func (s *PostService) RequeueScheduled(ctx context.Context) (int, error) {
	posts, err := s.PostRepository.FindScheduled(ctx)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindPersistence, "load scheduled posts", err)
	}
	n := 0
	for _, p := range posts {
		if p.ScheduledFor == nil {
			continue
		}
		if err := s.Queue.Add(ctx, p.ID.String(), *p.ScheduledFor); err != nil {
			s.logger.Warn("⚠️ could not requeue post", zap.String("postID", p.ID.String()), zap.Error(err))
			continue
		}
		n++
	}
	s.logger.Info("✅ Due queue rebuilt", zap.Int("count", n))
	return n, nil
}

func (s *PostService) find(ctx context.Context, postID string) (*postEntity.Post, error) {
	if _, err := uuid.FromString(postID); err != nil {
		return nil, apperr.Wrap(apperr.KindInvalid, "invalid post id", err)
	}
	p, err := s.PostRepository.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, apperr.NotFound) {
			return nil, apperr.New(apperr.KindNotFound, "post not found")
		}
		return nil, apperr.Wrap(apperr.KindPersistence, "load post", err)
	}
	return p, nil
}

func (s *PostService) update(ctx context.Context, p *postEntity.Post, from postEntity.Status) error {
	ok, err := s.PostRepository.UpdateIf(ctx, p, from)
	if err != nil {
		return apperr.Wrap(apperr.KindPersistence, "update post", err)
	}
	if !ok {
		return apperr.New(apperr.KindConflict, "post changed concurrently")
	}
	return nil
}

func (s *PostService) enqueue(ctx context.Context, p *postEntity.Post) {
	if s.Queue == nil || p.ScheduledFor == nil {
		return
	}
	if err := s.Queue.Add(ctx, p.ID.String(), *p.ScheduledFor); err != nil {
		s.logger.Warn("⚠️ could not add post to due queue", zap.String("postID", p.ID.String()), zap.Error(err))
	}
}

// requeue puts a claimed post back on the due queue. It runs on a detached
// ctx so a cancelled dispatch run can still hand the post back.
func (s *PostService) requeue(ctx context.Context, postID string, at time.Time) {
	if s.Queue == nil {
		return
	}
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if err := s.Queue.Add(rctx, postID, at); err != nil {
		s.logger.Error("❌ could not requeue post", zap.String("postID", postID), zap.Error(err))
		return
	}
	s.logger.Info("🔄 Post requeued", zap.String("postID", postID), zap.Time("at", at))
}

func (s *PostService) dequeue(ctx context.Context, postID string) {
	if s.Queue == nil {
		return
	}
	if err := s.Queue.Remove(ctx, postID); err != nil {
		s.logger.Warn("⚠️ could not remove post from due queue", zap.String("postID", postID), zap.Error(err))
	}
}

func (s *PostService) publish(ctx context.Context, kind string, p *postEntity.Post, errMsg string) {
	evt := eventPort.PostEvent{
		Type:       kind,
		PostID:     p.ID.String(),
		UserID:     p.UserID.String(),
		Error:      errMsg,
		OccurredAt: s.now().UTC(),
	}
	if p.TweetID != nil {
		evt.TweetID = *p.TweetID
	}
	if err := s.Events.Publish(ctx, evt); err != nil {
		s.logger.Warn("⚠️ could not publish post event", zap.String("type", kind), zap.String("postID", evt.PostID), zap.Error(err))
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func timePtr(t time.Time) *time.Time { return &t }
