package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qs3c/predict_admin_server/internal/pkg/response"
	"github.com/qs3c/predict_admin_server/internal/service"
)

// CronHandler 外部调度器调用的广播端点，响应固定为 {message} 或 {error}
type CronHandler struct {
	broadcastService *service.BroadcastService
	log              *zap.Logger
}

func NewCronHandler(broadcastService *service.BroadcastService, log *zap.Logger) *CronHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CronHandler{
		broadcastService: broadcastService,
		log:              log,
	}
}

// DailySummary 每日摘要，?types=status,pricing 或 ?contentTypes= 选择主题，缺省为全部
// GET /api/cron/daily-summary
func (h *CronHandler) DailySummary(c *gin.Context) {
	values := append(c.QueryArray("types"), c.QueryArray("contentTypes")...)
	h.run(c, "daily-summary", service.ParseTopics(values...))
}

// CommunityPost 社区帖子，?theme= 可覆盖当天主题
// GET /api/cron/community-post
func (h *CronHandler) CommunityPost(c *gin.Context) {
	report, err := h.broadcastService.RunCommunityPost(c.Request.Context(), c.Query("theme"))
	if err != nil {
		h.log.Error("cron job failed", zap.String("job", "community-post"), zap.Error(err))
		response.CronError(c, err.Error())
		return
	}
	response.CronMessage(c, report.Message())
}

// Status GET /api/cron/status
func (h *CronHandler) Status(c *gin.Context) {
	h.run(c, "status", []string{service.TopicStatus})
}

// Pricing GET /api/cron/pricing
func (h *CronHandler) Pricing(c *gin.Context) {
	h.run(c, "pricing", []string{service.TopicPricing})
}

// Maintenance GET /api/cron/maintenance
func (h *CronHandler) Maintenance(c *gin.Context) {
	h.run(c, "maintenance", []string{service.TopicMaintenance})
}

func (h *CronHandler) run(c *gin.Context, job string, topics []string) {
	report, err := h.broadcastService.RunDailySummary(c.Request.Context(), topics)
	if err != nil {
		h.log.Error("cron job failed", zap.String("job", job), zap.Error(err))
		response.CronError(c, err.Error())
		return
	}
	response.CronMessage(c, report.Message())
}
