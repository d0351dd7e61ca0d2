package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/qs3c/predict_admin_server/config"
	"github.com/qs3c/predict_admin_server/internal/api"
	"github.com/qs3c/predict_admin_server/internal/api/handler"
	"github.com/qs3c/predict_admin_server/internal/database"
	"github.com/qs3c/predict_admin_server/internal/pkg/ai"
	"github.com/qs3c/predict_admin_server/internal/pkg/logger"
	"github.com/qs3c/predict_admin_server/internal/pkg/oauth"
	"github.com/qs3c/predict_admin_server/internal/pkg/oss"
	"github.com/qs3c/predict_admin_server/internal/pkg/pubsub"
	"github.com/qs3c/predict_admin_server/internal/pkg/queue"
	"github.com/qs3c/predict_admin_server/internal/pkg/telegram"
	"github.com/qs3c/predict_admin_server/internal/pkg/ws"
	"github.com/qs3c/predict_admin_server/internal/repository"
	"github.com/qs3c/predict_admin_server/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog := logger.New(&cfg.Log)
	defer zlog.Sync()

	// 初始化数据库
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		zlog.Fatal("failed to connect database", zap.Error(err))
	}
	zlog.Info("database connected", zap.String("driver", cfg.Database.Driver))

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		zlog.Fatal("failed to connect redis", zap.Error(err))
	}
	zlog.Info("redis connected")

	// 初始化 OSS（可选）
	var store service.ObjectStore
	if cfg.OSS.Endpoint != "" && cfg.OSS.AccessKeyID != "" {
		ossClient, err := oss.NewClient(&cfg.OSS)
		if err != nil {
			zlog.Warn("failed to init OSS client, uploads disabled", zap.Error(err))
		} else {
			store = ossClient
			zlog.Info("OSS client initialized")
		}
	}

	// AI 与 Telegram
	provider, err := ai.NewProvider(&cfg.AI)
	if err != nil {
		zlog.Warn("AI provider disabled", zap.Error(err))
	}
	messenger := telegram.NewClient(&cfg.Telegram)

	// Queue 与 Pub/Sub
	emailQueue := queue.NewQueue(rdb, cfg.Queue.EmailQueue)
	publisher := pubsub.NewPublisher(rdb)
	subscriber := pubsub.NewSubscriber(rdb)
	stateStore := oauth.NewStateStore(rdb)

	// 初始化 WebSocket Hub
	wsHub := ws.NewHub(zlog)

	// 初始化 Repository
	adminRepo := repository.NewAdminRepository(db)
	appRepo := repository.NewApplicationRepository(db)
	historyRepo := repository.NewStatusHistoryRepository(db)
	planRepo := repository.NewPlanRepository(db)
	discountRepo := repository.NewDiscountRepository(db)
	eventRepo := repository.NewMaintenanceEventRepository(db)
	userRepo := repository.NewUserRepository(db)
	mediaRepo := repository.NewMediaRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// 初始化 Service
	authService := service.NewAuthService(adminRepo, cfg, stateStore)
	mediaService := service.NewMediaService(mediaRepo, store, cfg, publisher, zlog)
	contentService := service.NewContentService(provider, messenger, mediaService, cfg, zlog)
	appService := service.NewApplicationService(appRepo, historyRepo, contentService, publisher, zlog)
	planService := service.NewPlanService(planRepo, appRepo, publisher, zlog)
	discountService := service.NewDiscountService(discountRepo, publisher, zlog)
	maintenanceService := service.NewMaintenanceService(eventRepo, appRepo, publisher, zlog)
	userService := service.NewUserService(userRepo, planRepo, publisher, zlog)
	notificationService := service.NewNotificationService(notificationRepo, messenger, emailQueue, cfg, publisher, zlog)
	statusService := service.NewStatusService(appRepo, historyRepo, cfg)
	broadcastService := service.NewBroadcastService(appRepo, planRepo, discountService, maintenanceService, contentService, cfg, zlog)
	realtimeService := service.NewRealtimeService(subscriber, appRepo, planRepo, discountService, eventRepo, userRepo, mediaRepo, notificationRepo, zlog)

	// 初始化 Handler
	authHandler := handler.NewAuthHandler(authService, cfg.OAuth.Github.ConsoleURL)
	applicationHandler := handler.NewApplicationHandler(appService)
	planHandler := handler.NewPlanHandler(planService)
	discountHandler := handler.NewDiscountHandler(discountService)
	maintenanceHandler := handler.NewMaintenanceHandler(maintenanceService, contentService, zlog)
	userHandler := handler.NewUserHandler(userService)
	mediaHandler := handler.NewMediaHandler(mediaService, cfg.Upload.MaxSize)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	contentHandler := handler.NewContentHandler(contentService, appService, planService, discountService, maintenanceService, zlog)
	statusHandler := handler.NewStatusHandler(statusService)
	cronHandler := handler.NewCronHandler(broadcastService, zlog)
	websocketHandler := handler.NewWebSocketHandler(wsHub, realtimeService, cfg.JWT.Secret, cfg.CORS.AllowedOrigins, zlog)

	// 初始化 Router
	router := api.NewRouter(
		authHandler,
		applicationHandler,
		planHandler,
		discountHandler,
		maintenanceHandler,
		userHandler,
		mediaHandler,
		notificationHandler,
		contentHandler,
		statusHandler,
		cronHandler,
		websocketHandler,
		cfg,
		zlog,
	)
	engine := router.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 变更事件 -> WebSocket 推送
	go realtimeService.Bridge(ctx, wsHub)
	zlog.Info("realtime bridge started")

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	go func() {
		zlog.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// 监听退出信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	zlog.Info("received shutdown signal")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("server shutdown failed", zap.Error(err))
	}
	zlog.Info("server shutdown complete")
}
