package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/qs3c/predict_admin_server/config"
	"github.com/qs3c/predict_admin_server/internal/database"
	"github.com/qs3c/predict_admin_server/internal/pkg/ai"
	"github.com/qs3c/predict_admin_server/internal/pkg/cron"
	"github.com/qs3c/predict_admin_server/internal/pkg/email"
	"github.com/qs3c/predict_admin_server/internal/pkg/logger"
	"github.com/qs3c/predict_admin_server/internal/pkg/pubsub"
	"github.com/qs3c/predict_admin_server/internal/pkg/queue"
	"github.com/qs3c/predict_admin_server/internal/pkg/telegram"
	"github.com/qs3c/predict_admin_server/internal/repository"
	"github.com/qs3c/predict_admin_server/internal/service"
	"github.com/qs3c/predict_admin_server/internal/worker"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog := logger.New(&cfg.Log).With(zap.String("process", "worker"))
	defer zlog.Sync()

	// 初始化数据库
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		zlog.Fatal("failed to connect database", zap.Error(err))
	}
	zlog.Info("database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		zlog.Fatal("failed to connect redis", zap.Error(err))
	}
	zlog.Info("redis connected")

	emailQueue := queue.NewQueue(rdb, cfg.Queue.EmailQueue)
	publisher := pubsub.NewPublisher(rdb)
	messenger := telegram.NewClient(&cfg.Telegram)

	// 初始化 Repository 与 Service
	notificationRepo := repository.NewNotificationRepository(db)
	appRepo := repository.NewApplicationRepository(db)
	planRepo := repository.NewPlanRepository(db)
	discountRepo := repository.NewDiscountRepository(db)
	eventRepo := repository.NewMaintenanceEventRepository(db)

	notificationService := service.NewNotificationService(notificationRepo, messenger, emailQueue, cfg, publisher, zlog)

	// 创建任务处理器
	processor := worker.NewProcessor(email.NewSender(cfg), notificationService, zlog)

	// 创建 context 用于优雅关闭
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听退出信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		zlog.Info("received shutdown signal")
		cancel()
	}()

	// 进程内定时广播，部署了外部调度器时保持关闭
	if cfg.Cron.Enabled {
		provider, err := ai.NewProvider(&cfg.AI)
		if err != nil {
			zlog.Fatal("failed to init AI provider", zap.Error(err))
		}

		discountService := service.NewDiscountService(discountRepo, publisher, zlog)
		maintenanceService := service.NewMaintenanceService(eventRepo, appRepo, publisher, zlog)
		contentService := service.NewContentService(provider, messenger, nil, cfg, zlog)
		broadcastService := service.NewBroadcastService(appRepo, planRepo, discountService, maintenanceService, contentService, cfg, zlog)

		scheduler := cron.NewScheduler(zlog)
		if cfg.Cron.DailySummaryAt != "" {
			err := scheduler.AddDaily("daily-summary", cfg.Cron.DailySummaryAt, func(ctx context.Context) error {
				report, err := broadcastService.RunDailySummary(ctx, cfg.Cron.Topics)
				if err != nil {
					return err
				}
				zlog.Info("daily summary report", zap.String("message", report.Message()))
				return nil
			})
			if err != nil {
				zlog.Fatal("invalid daily summary schedule", zap.Error(err))
			}
		}
		if cfg.Cron.CommunityPostAt != "" {
			err := scheduler.AddDaily("community-post", cfg.Cron.CommunityPostAt, func(ctx context.Context) error {
				_, err := broadcastService.RunCommunityPost(ctx, "")
				return err
			})
			if err != nil {
				zlog.Fatal("invalid community post schedule", zap.Error(err))
			}
		}

		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	zlog.Info("worker started", zap.Int("max_workers", cfg.Queue.MaxWorkers))

	// 阻塞直到 ctx 取消且所有 worker 退出
	processor.Run(ctx, emailQueue, cfg.Queue.MaxWorkers)
	zlog.Info("worker shutdown complete")
}
