package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qs3c/predict_admin_server/config"
	"github.com/qs3c/predict_admin_server/internal/api/handler"
	"github.com/qs3c/predict_admin_server/internal/api/middleware"
)

type Router struct {
	authHandler         *handler.AuthHandler
	applicationHandler  *handler.ApplicationHandler
	planHandler         *handler.PlanHandler
	discountHandler     *handler.DiscountHandler
	maintenanceHandler  *handler.MaintenanceHandler
	userHandler         *handler.UserHandler
	mediaHandler        *handler.MediaHandler
	notificationHandler *handler.NotificationHandler
	contentHandler      *handler.ContentHandler
	statusHandler       *handler.StatusHandler
	cronHandler         *handler.CronHandler
	websocketHandler    *handler.WebSocketHandler
	cfg                 *config.Config
	log                 *zap.Logger
}

func NewRouter(
	authHandler *handler.AuthHandler,
	applicationHandler *handler.ApplicationHandler,
	planHandler *handler.PlanHandler,
	discountHandler *handler.DiscountHandler,
	maintenanceHandler *handler.MaintenanceHandler,
	userHandler *handler.UserHandler,
	mediaHandler *handler.MediaHandler,
	notificationHandler *handler.NotificationHandler,
	contentHandler *handler.ContentHandler,
	statusHandler *handler.StatusHandler,
	cronHandler *handler.CronHandler,
	websocketHandler *handler.WebSocketHandler,
	cfg *config.Config,
	log *zap.Logger,
) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{
		authHandler:         authHandler,
		applicationHandler:  applicationHandler,
		planHandler:         planHandler,
		discountHandler:     discountHandler,
		maintenanceHandler:  maintenanceHandler,
		userHandler:         userHandler,
		mediaHandler:        mediaHandler,
		notificationHandler: notificationHandler,
		contentHandler:      contentHandler,
		statusHandler:       statusHandler,
		cronHandler:         cronHandler,
		websocketHandler:    websocketHandler,
		cfg:                 cfg,
		log:                 log,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.Recovery(r.log))
	engine.Use(middleware.Logger(r.log))
	engine.Use(middleware.CORS(r.cfg.CORS))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 定时任务端点，由外部调度器调用
	cron := engine.Group("/api/cron")
	cron.Use(middleware.CronSecret(r.cfg.Cron.Secret))
	{
		cron.GET("/daily-summary", r.cronHandler.DailySummary)
		cron.GET("/community-post", r.cronHandler.CommunityPost)
		cron.GET("/status", r.cronHandler.Status)
		cron.GET("/pricing", r.cronHandler.Pricing)
		cron.GET("/maintenance", r.cronHandler.Maintenance)
	}

	api := engine.Group("/api/v1")
	{
		// WebSocket，token 通过 query 传递
		api.GET("/ws", r.websocketHandler.Handle)

		auth := api.Group("/auth")
		{
			auth.POST("/login", r.authHandler.Login)
			auth.GET("/github", r.authHandler.GithubAuth)
			auth.GET("/github/callback", r.authHandler.GithubCallback)
			auth.GET("/me", middleware.Auth(r.cfg.JWT.Secret), r.authHandler.Me)
		}

		// 公开接口 - 状态站点与定价页
		public := api.Group("/public")
		{
			public.GET("/status", r.statusHandler.Status)
			public.GET("/applications/:id/maintenance", r.statusHandler.MaintenanceMessage)
			public.GET("/maintenance-events", r.maintenanceHandler.List)
			public.GET("/plans/:id", r.planHandler.ListByApp)
			public.POST("/discounts/validate", r.discountHandler.Validate)
		}

		// 管理端
		admin := api.Group("/admin")
		admin.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			apps := admin.Group("/applications")
			{
				apps.GET("", r.applicationHandler.List)
				apps.POST("", r.applicationHandler.Create)
				apps.GET("/:id", r.applicationHandler.Get)
				apps.PUT("/:id", r.applicationHandler.Update)
				apps.DELETE("/:id", r.applicationHandler.Delete)
				apps.PUT("/:id/status", r.applicationHandler.UpdateStatus)
				apps.GET("/:id/history", r.applicationHandler.History)
				apps.GET("/:id/plans", r.planHandler.ListByApp)
				apps.POST("/:id/plans", r.planHandler.Create)
			}

			plans := admin.Group("/plans")
			{
				plans.PUT("/:id", r.planHandler.Update)
				plans.DELETE("/:id", r.planHandler.Delete)
			}

			discounts := admin.Group("/discount-codes")
			{
				discounts.GET("", r.discountHandler.List)
				discounts.POST("", r.discountHandler.Create)
				discounts.GET("/:id", r.discountHandler.Get)
				discounts.PUT("/:id", r.discountHandler.Update)
				discounts.DELETE("/:id", r.discountHandler.Delete)
			}

			events := admin.Group("/maintenance-events")
			{
				events.GET("", r.maintenanceHandler.List)
				events.POST("", r.maintenanceHandler.Create)
				events.GET("/:id", r.maintenanceHandler.Get)
				events.PUT("/:id", r.maintenanceHandler.Update)
				events.DELETE("/:id", r.maintenanceHandler.Delete)
				events.POST("/:id/resolve", r.maintenanceHandler.Resolve)
			}

			users := admin.Group("/users")
			{
				users.GET("", r.userHandler.List)
				users.GET("/:id", r.userHandler.Get)
				users.GET("/:id/referrals", r.userHandler.ListReferrals)
				users.POST("/:id/referrals", r.userHandler.AddReferral)
				users.GET("/:id/pricings", r.userHandler.ListPricings)
				users.POST("/:id/pricings", r.userHandler.ActivatePricing)
			}

			media := admin.Group("/media")
			{
				media.GET("", r.mediaHandler.List)
				media.POST("", r.mediaHandler.Upload)
				media.POST("/register", r.mediaHandler.Register)
				media.DELETE("/:id", r.mediaHandler.Delete)
			}

			notifications := admin.Group("/notifications")
			{
				notifications.GET("", r.notificationHandler.List)
				notifications.POST("", r.notificationHandler.Create)
				notifications.GET("/:id", r.notificationHandler.Get)
				notifications.POST("/:id/unpin", r.notificationHandler.Unpin)
			}

			content := admin.Group("/content")
			{
				content.POST("/daily-summary", r.contentHandler.DailySummaryPost)
				content.POST("/community-post", r.contentHandler.CommunityPost)
				content.POST("/status-announcement", r.contentHandler.StatusAnnouncement)
				content.POST("/pricing-announcement", r.contentHandler.PricingAnnouncement)
				content.POST("/discount-announcement", r.contentHandler.DiscountAnnouncement)
				content.POST("/maintenance-announcement", r.contentHandler.MaintenanceAnnouncement)
				content.POST("/notification-text", r.contentHandler.NotificationText)
				content.POST("/image", r.contentHandler.Image)
				content.POST("/publish", r.contentHandler.Publish)
			}
		}
	}

	return engine
}
