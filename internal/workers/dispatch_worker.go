package workers

import (
	"context"
	"time"

	postEntity "xpilot/internal/core/post"
	duePort "xpilot/internal/ports/duequeue"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PostExecutor publishes one due post by id.
type PostExecutor interface {
	Execute(ctx context.Context, postID string) (*postEntity.Post, error)
}

// DispatchWorker پست‌های سررسید شده را از صف برداشته و منتشر می‌کند
type DispatchWorker struct {
	Queue       duePort.DueQueue
	Posts       PostExecutor
	BatchSize   int
	Concurrency int
	Logger      *zap.Logger
	now         func() time.Time
}

func NewDispatchWorker(
	queue duePort.DueQueue,
	posts PostExecutor,
	batchSize int,
	concurrency int,
	logger *zap.Logger,
) *DispatchWorker {
	if batchSize <= 0 {
		batchSize = 100
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &DispatchWorker{
		Queue:       queue,
		Posts:       posts,
		BatchSize:   batchSize,
		Concurrency: concurrency,
		Logger:      logger,
		now:         time.Now,
	}
}

// Tick claims every due post and executes them with bounded concurrency.
// Individual failures are logged; they already left the row in failed state.
func (w *DispatchWorker) Tick(ctx context.Context) error {
	ids, err := w.Queue.ClaimDue(ctx, w.now(), w.BatchSize)
	if err != nil {
		w.Logger.Error("❌ Error claiming due posts", zap.Error(err))
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	w.Logger.Info("📦 Dispatching due posts", zap.Int("count", len(ids)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.Concurrency)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			w.dispatch(gctx, id)
			return nil
		})
	}
	return g.Wait()
}

func (w *DispatchWorker) dispatch(ctx context.Context, postID string) {
	if ctx.Err() != nil {
		w.release(ctx, postID)
		return
	}
	p, err := w.Posts.Execute(ctx, postID)
	if err != nil {
		w.Logger.Warn("⚠️ Dispatch failed", zap.String("postID", postID), zap.Error(err))
		return
	}
	tweetID := ""
	if p.TweetID != nil {
		tweetID = *p.TweetID
	}
	w.Logger.Info("✅ Dispatched post", zap.String("postID", postID), zap.String("tweetID", tweetID))
}

// release hands a claimed but unstarted post back to the queue, due now.
func (w *DispatchWorker) release(ctx context.Context, postID string) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := w.Queue.Add(rctx, postID, w.now()); err != nil {
		w.Logger.Error("❌ could not release post", zap.String("postID", postID), zap.Error(err))
		return
	}
	w.Logger.Info("🔄 Dispatch run ended before post started, released", zap.String("postID", postID))
}
