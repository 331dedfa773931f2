package analyticsapp

import (
	"context"
	"sort"

	"xpilot/internal/core/abtest"
	"xpilot/internal/core/account"
	"xpilot/internal/core/apperr"
	postEntity "xpilot/internal/core/post"
	postPort "xpilot/internal/ports/post"
	"xpilot/internal/ports/social"

	"go.uber.org/zap"
)

const (
	defaultTopLimit = 10
	maxTopLimit     = 100
)

type PostLoader interface {
	Get(ctx context.Context, userID, postID string) (*postEntity.Post, error)
}

type AccountResolver interface {
	Resolve(ctx context.Context, userID, accountID string) (*account.TwitterAccount, error)
}

type MetricsFetcher interface {
	FetchMetrics(ctx context.Context, acc *account.TwitterAccount, tweetID string) (*social.Metrics, error)
}

// AnalyticsService گزارش A/B و پست‌های پربازده به عنوان فرصت کوت/ریپلای
type AnalyticsService struct {
	PostRepository postPort.PostRepository
	posts          PostLoader
	accounts       AccountResolver
	fetcher        MetricsFetcher
	logger         *zap.Logger
}

func NewAnalyticsService(repo postPort.PostRepository, posts PostLoader, accounts AccountResolver, fetcher MetricsFetcher, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		PostRepository: repo,
		posts:          posts,
		accounts:       accounts,
		fetcher:        fetcher,
		logger:         logger,
	}
}

func (s *AnalyticsService) ABTests(ctx context.Context, userID string) ([]abtest.Group, error) {
	posts, err := s.PostRepository.FindWithABTest(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "load a/b posts", err)
	}
	groups := abtest.GroupByTestID(posts)
	if groups == nil {
		groups = []abtest.Group{}
	}
	return groups, nil
}

// TopPosts returns posted rows ordered by total engagement, then impressions.
func (s *AnalyticsService) TopPosts(ctx context.Context, userID string, limit int) ([]*postEntity.Post, error) {
	if limit <= 0 {
		limit = defaultTopLimit
	}
	if limit > maxTopLimit {
		limit = maxTopLimit
	}
	posts, err := s.PostRepository.FindTopPosted(ctx, userID, limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "load top posts", err)
	}
	sortByEngagement(posts)
	return posts, nil
}

// SyncMetrics pulls public metrics from X for one posted row.
func (s *AnalyticsService) SyncMetrics(ctx context.Context, userID, postID string) (*postEntity.Post, error) {
	p, err := s.posts.Get(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if p.Status != postEntity.StatusPosted || p.TweetID == nil {
		return nil, apperr.New(apperr.KindConflict, "only posted posts have metrics")
	}
	if p.RetweetType != nil && *p.RetweetType == postEntity.RetweetSimple {
		return nil, apperr.New(apperr.KindConflict, "simple retweets have no metrics of their own")
	}

	accountID := ""
	if p.TwitterAccountID.Valid {
		accountID = p.TwitterAccountID.UUID.String()
	}
	acc, err := s.accounts.Resolve(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}

	m, err := s.fetcher.FetchMetrics(ctx, acc, *p.TweetID)
	if err != nil {
		return nil, err
	}
	p.ImpressionCount = m.Impressions
	p.LikeCount = m.Likes
	p.RetweetCount = m.Retweets
	p.ReplyCount = m.Replies
	p.QuoteCount = m.Quotes

	ok, err := s.PostRepository.UpdateIf(ctx, p, postEntity.StatusPosted)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "save metrics", err)
	}
	if !ok {
		return nil, apperr.New(apperr.KindConflict, "post changed concurrently")
	}
	s.logger.Info("✅ Metrics synced", zap.String("postID", postID), zap.Int64("impressions", p.Impressions()))
	return p, nil
}

func sortByEngagement(posts []*postEntity.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		ei, ej := posts[i].Engagement(), posts[j].Engagement()
		if ei != ej {
			return ei > ej
		}
		return posts[i].Impressions() > posts[j].Impressions()
	})
}
