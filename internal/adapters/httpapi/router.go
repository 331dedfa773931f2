package httpapi

import (
	"context"
	"net/http"
	"time"

	"xpilot/internal/adapters/httpapi/middleware"
	"xpilot/internal/core/abtest"
	accountEntity "xpilot/internal/core/account"
	engagementapp "xpilot/internal/core/engagement/service"
	generationapp "xpilot/internal/core/generation/service"
	postEntity "xpilot/internal/core/post"
	"xpilot/internal/core/promotion"
	"xpilot/internal/core/usage"
	userEntity "xpilot/internal/core/user"
	accountPort "xpilot/internal/ports/account"
	postPort "xpilot/internal/ports/post"
	promotionPort "xpilot/internal/ports/promotion"
	userPort "xpilot/internal/ports/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserUseCase: اینترفیسِ لازم برای کنترلر/روتر (Inbound Port)
type UserUseCase interface {
	LoginUser(ctx context.Context, username, password string) (*userPort.LoginResponse, error)
	RegisterUser(ctx context.Context, name, username, password string) (*userPort.UserDTO, error)
	GetUser(ctx context.Context, userID string) (*userEntity.User, error)
}

type QuotaUseCase interface {
	CanProceed(ctx context.Context, userID string, isPro bool, dailyLimit int) usage.Quota
}

type AccountUseCase interface {
	ConnectAccount(ctx context.Context, in accountPort.ConnectInput) (*accountEntity.TwitterAccount, error)
	ListAccounts(ctx context.Context, userID string) ([]*accountEntity.TwitterAccount, error)
}

type PromotionUseCase interface {
	Get(ctx context.Context, userID string) (*promotion.Settings, error)
	Update(ctx context.Context, userID string, in promotionPort.UpdateInput) (*promotion.Settings, error)
}

type GenerationUseCase interface {
	GenerateQuote(ctx context.Context, userID, targetText string) (*generationapp.Draft, error)
	GenerateReply(ctx context.Context, userID, targetText string) (*generationapp.Draft, error)
}

type PostUseCase interface {
	CreateScheduled(ctx context.Context, in postPort.CreateInput) (*postEntity.Post, error)
	List(ctx context.Context, userID string, status postEntity.Status) ([]*postEntity.Post, error)
	Get(ctx context.Context, userID, postID string) (*postEntity.Post, error)
	Reschedule(ctx context.Context, userID, postID string, at time.Time) (*postEntity.Post, error)
	UpdateText(ctx context.Context, userID, postID, text string) (*postEntity.Post, error)
	PostNow(ctx context.Context, userID, postID string) (*postEntity.Post, error)
	Delete(ctx context.Context, userID, postID string) error
}

type EngagementUseCase interface {
	PostSimpleRetweet(ctx context.Context, in engagementapp.Input) (*postEntity.Post, error)
	PostQuoteRT(ctx context.Context, in engagementapp.Input) (*postEntity.Post, error)
	PostReply(ctx context.Context, in engagementapp.Input) (*postEntity.Post, error)
	ScheduleRetweet(ctx context.Context, in engagementapp.Input) (*postEntity.Post, error)
	ScheduleReply(ctx context.Context, in engagementapp.Input) (*postEntity.Post, error)
}

type AnalyticsUseCase interface {
	ABTests(ctx context.Context, userID string) ([]abtest.Group, error)
	TopPosts(ctx context.Context, userID string, limit int) ([]*postEntity.Post, error)
	SyncMetrics(ctx context.Context, userID, postID string) (*postEntity.Post, error)
}

// UseCases groups the inbound ports the router dispatches to.
type UseCases struct {
	Users       UserUseCase
	Quota       QuotaUseCase
	Accounts    AccountUseCase
	Promotions  PromotionUseCase
	Generation  GenerationUseCase
	Posts       PostUseCase
	Engagements EngagementUseCase
	Analytics   AnalyticsUseCase
}

type RouterConfig struct {
	JWTKey         []byte
	FreeDailyLimit int
	Logger         *zap.Logger
}

// فقط روتینگ: UseCase از بیرون تزریق می‌شود
func SetupRoutes(uc UseCases, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(cfg.Logger))

	userCtl := NewUserController(uc.Users, uc.Quota, cfg.FreeDailyLimit)
	accountCtl := NewAccountController(uc.Accounts)
	promotionCtl := NewPromotionController(uc.Promotions)
	generationCtl := NewGenerationController(uc.Generation)
	postCtl := NewPostController(uc.Posts)
	engagementCtl := NewEngagementController(uc.Engagements)
	analyticsCtl := NewAnalyticsController(uc.Analytics)

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// مسیرهای ثبت‌نام و ورود بدون JWT Middleware
	r.POST("/register", userCtl.RegisterUser)
	r.POST("/login", userCtl.LoginUser)

	auth := r.Group("/", middleware.JWTAuthMiddleware(cfg.JWTKey))
	auth.GET("/me/quota", userCtl.Quota)

	auth.POST("/accounts", accountCtl.Connect)
	auth.GET("/accounts", accountCtl.List)

	auth.GET("/promotion", promotionCtl.Get)
	auth.PUT("/promotion", promotionCtl.Update)

	auth.POST("/generate/quote", generationCtl.Quote)
	auth.POST("/generate/reply", generationCtl.Reply)

	auth.POST("/posts", postCtl.Create)
	auth.GET("/posts", postCtl.List)
	auth.GET("/posts/:id", postCtl.Get)
	auth.PATCH("/posts/:id/schedule", postCtl.Reschedule)
	auth.PATCH("/posts/:id/text", postCtl.UpdateText)
	auth.POST("/posts/:id/publish", postCtl.PostNow)
	auth.DELETE("/posts/:id", postCtl.Delete)
	auth.POST("/posts/:id/metrics/sync", analyticsCtl.SyncMetrics)

	auth.POST("/engagements/retweet", engagementCtl.Retweet)
	auth.POST("/engagements/quote", engagementCtl.Quote)
	auth.POST("/engagements/reply", engagementCtl.Reply)
	auth.POST("/engagements/schedule", engagementCtl.Schedule)

	auth.GET("/analytics/ab-tests", analyticsCtl.ABTests)
	auth.GET("/analytics/top-posts", analyticsCtl.TopPosts)
	return r
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		)
	}
}
