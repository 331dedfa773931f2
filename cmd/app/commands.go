package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	dbadapter "xpilot/internal/adapters/database"
	"xpilot/internal/adapters/httpapi"
	"xpilot/internal/adapters/llm"
	"xpilot/internal/adapters/rabbitmq"
	redisadapter "xpilot/internal/adapters/redis"
	"xpilot/internal/adapters/xapi"
	"xpilot/internal/config"
	accountapp "xpilot/internal/core/account/service"
	analyticsapp "xpilot/internal/core/analytics/service"
	engagementapp "xpilot/internal/core/engagement/service"
	generationapp "xpilot/internal/core/generation/service"
	postapp "xpilot/internal/core/post/service"
	promotionapp "xpilot/internal/core/promotion/service"
	"xpilot/internal/core/ratelimit"
	usageapp "xpilot/internal/core/usage/service"
	userEntity "xpilot/internal/core/user"
	userapp "xpilot/internal/core/user/service"
	duePort "xpilot/internal/ports/duequeue"
	eventPort "xpilot/internal/ports/events"
	llmPort "xpilot/internal/ports/llm"
	"xpilot/internal/scheduler"
	"xpilot/internal/workers"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// bootstrap بارگذاری تنظیمات، logger و اتصال دیتابیس
func bootstrap() (config.AppConfig, *zap.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, nil, nil, err
	}
	logger, err := config.InitLogger(cfg.Env)
	if err != nil {
		return cfg, nil, nil, err
	}
	db, err := config.InitDB(cfg.DBDSN, logger)
	if err != nil {
		return cfg, logger, nil, err
	}
	return cfg, logger, db, nil
}

func closeDB(db *gorm.DB, logger *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("Error getting raw DB:", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Error("Error closing database connection:", zap.Error(err))
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()
			defer closeDB(db, logger)

			if err := dbadapter.AutoMigrate(db); err != nil {
				return fmt.Errorf("error during migrations: %w", err)
			}
			logger.Info("✅ Database migrations completed")
			return nil
		},
	}
}

func setPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-plan <username> <free|pro>",
		Short: "Change a user's subscription plan",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan := userEntity.Plan(args[1])
			if !plan.Valid() {
				return fmt.Errorf("plan must be free or pro, got %q", args[1])
			}
			cfg, logger, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()
			defer closeDB(db, logger)

			users := userapp.NewUserService(dbadapter.NewUserRepositoryDatabase(db), []byte(cfg.JWTSecret), logger)
			return users.SetPlan(cmd.Context(), args[0], plan)
		},
	}
}

func serveCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the post dispatcher",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()
			defer closeDB(db, logger)

			if migrate {
				if err := dbadapter.AutoMigrate(db); err != nil {
					return fmt.Errorf("error during migrations: %w", err)
				}
				logger.Info("✅ Database migrations completed")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger, db)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "run migrations before serving")
	return cmd
}

func serve(ctx context.Context, cfg config.AppConfig, logger *zap.Logger, db *gorm.DB) error {
	// آداپترهای خروجی
	userRepo := dbadapter.NewUserRepositoryDatabase(db)
	postRepo := dbadapter.NewPostRepositoryDatabase(db)
	accountRepo := dbadapter.NewAccountRepositoryDatabase(db)
	usageRepo := dbadapter.NewUsageRepositoryDatabase(db)
	promotionRepo := dbadapter.NewPromotionRepositoryDatabase(db)

	redisClient, err := config.InitRedis(ctx, cfg, logger)
	if err != nil {
		return err
	}
	var queue duePort.DueQueue = dbadapter.NewDueQueueDatabase(db)
	if redisClient != nil {
		defer redisClient.Close()
		queue = redisadapter.NewDueQueueRedis(redisClient, logger)
	}

	var events eventPort.Publisher = eventPort.Nop{}
	if cfg.AMQPURL != "" {
		events = rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPQueue, logger)
	} else {
		logger.Warn("⚠️ AMQP_URL is not set, lifecycle events are not published")
	}

	var generator llmPort.TextGenerator
	if g, err := llm.New(llm.Config{
		Provider:     cfg.LLMProvider,
		GrokAPIKey:   cfg.GrokAPIKey,
		GrokModel:    cfg.GrokModel,
		GrokBaseURL:  cfg.GrokBaseURL,
		ClaudeAPIKey: cfg.ClaudeAPIKey,
		ClaudeModel:  cfg.ClaudeModel,
	}, logger); err != nil {
		logger.Warn("⚠️ draft generation disabled", zap.Error(err))
	} else {
		generator = g
	}

	xClient := xapi.NewClient(xapi.Config{
		BaseURL:      cfg.XAPIBaseURL,
		ClientID:     cfg.XClientID,
		ClientSecret: cfg.XClientSecret,
	}, logger)

	// یوزکیس/سرویس
	limiter := ratelimit.New(postRepo, cfg.RateLimitWindow, cfg.RateLimitMax)
	userSvc := userapp.NewUserService(userRepo, []byte(cfg.JWTSecret), logger)
	accountSvc := accountapp.NewAccountService(accountRepo, logger)
	usageSvc := usageapp.NewUsageService(usageRepo, logger)
	promotionSvc := promotionapp.NewPromotionService(promotionRepo, logger)
	publisher := engagementapp.NewPublisher(accountRepo, accountSvc, xClient, logger)
	postSvc := postapp.NewPostService(postRepo, queue, publisher, events, limiter, logger)
	orchestrator := engagementapp.NewOrchestrator(postRepo, postSvc, publisher, limiter, logger)
	generationSvc := generationapp.NewGenerationService(userSvc, usageSvc, promotionSvc, generator, cfg.FreeDailyLimit, logger)
	analyticsSvc := analyticsapp.NewAnalyticsService(postRepo, postSvc, accountSvc, publisher, logger)

	if n, err := postSvc.RequeueScheduled(ctx); err != nil {
		logger.Warn("⚠️ Could not requeue scheduled posts", zap.Error(err))
	} else {
		logger.Info("🔄 Requeued scheduled posts", zap.Int("count", n))
	}

	dispatcher := workers.NewDispatchWorker(queue, postSvc, cfg.DispatchBatch, cfg.DispatchConcurrency, logger)
	sched := scheduler.New(cfg.DispatchTimeout, logger)
	if err := sched.AddJob("dispatch", cfg.DispatchSchedule, dispatcher.Tick); err != nil {
		return err
	}
	// posts that came due while the process was down go out before the first cron tick
	if err := sched.RunNow("dispatch", dispatcher.Tick); err != nil {
		logger.Warn("⚠️ Catch-up dispatch failed", zap.Error(err))
	}
	sched.Start()
	defer func() { <-sched.Stop().Done() }()

	// تزریق یوزکیس به آداپتر ورودی
	r := httpapi.SetupRoutes(httpapi.UseCases{
		Users:       userSvc,
		Quota:       usageSvc,
		Accounts:    accountSvc,
		Promotions:  promotionSvc,
		Generation:  generationSvc,
		Posts:       postSvc,
		Engagements: orchestrator,
		Analytics:   analyticsSvc,
	}, httpapi.RouterConfig{
		JWTKey:         []byte(cfg.JWTSecret),
		FreeDailyLimit: cfg.FreeDailyLimit,
		Logger:         logger,
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("🚀 App is running", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
	}

	logger.Info("🛑 Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
