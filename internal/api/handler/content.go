package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qs3c/predict_admin_server/internal/model/dto"
	"github.com/qs3c/predict_admin_server/internal/pkg/response"
	"github.com/qs3c/predict_admin_server/internal/service"
)

// 返回给控制台的通用失败信息，具体原因只写日志
const contentFailureMessage = "La génération a échoué. Réessayez plus tard."

// ContentHandler AI 内容生成与频道发布
type ContentHandler struct {
	contentService     *service.ContentService
	appService         *service.ApplicationService
	planService        *service.PlanService
	discountService    *service.DiscountService
	maintenanceService *service.MaintenanceService
	log                *zap.Logger
}

func NewContentHandler(
	contentService *service.ContentService,
	appService *service.ApplicationService,
	planService *service.PlanService,
	discountService *service.DiscountService,
	maintenanceService *service.MaintenanceService,
	log *zap.Logger,
) *ContentHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ContentHandler{
		contentService:     contentService,
		appService:         appService,
		planService:        planService,
		discountService:    discountService,
		maintenanceService: maintenanceService,
		log:                log,
	}
}

// DailySummaryPost 根据主题摘要生成帖子（不发布）
// POST /api/v1/admin/content/daily-summary
func (h *ContentHandler) DailySummaryPost(c *gin.Context) {
	var req dto.DailySummaryPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	decision, err := h.contentService.GenerateDailySummaryPost(c.Request.Context(), req.Topic, req.Digest)
	if err != nil {
		h.fail(c, "daily-summary", err)
		return
	}

	response.Success(c, &dto.ContentResponse{
		Success: true,
		Text:    decision.Text,
		Skipped: !decision.Post,
	})
}

// CommunityPost 社区帖子
// POST /api/v1/admin/content/community-post
func (h *ContentHandler) CommunityPost(c *gin.Context) {
	var req dto.CommunityPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	result, err := h.contentService.GenerateCommunityPost(c.Request.Context(), req.Theme)
	h.finish(c, "community-post", result, err, req.Publish)
}

// StatusAnnouncement 应用状态公告
// POST /api/v1/admin/content/status-announcement
func (h *ContentHandler) StatusAnnouncement(c *gin.Context) {
	var req dto.StatusAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	app, err := h.appService.Get(req.AppID)
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := h.contentService.GenerateStatusAnnouncement(c.Request.Context(), app)
	h.finish(c, "status-announcement", result, err, req.Publish)
}

// PricingAnnouncement 套餐公告
// POST /api/v1/admin/content/pricing-announcement
func (h *ContentHandler) PricingAnnouncement(c *gin.Context) {
	var req dto.PricingAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	plan, err := h.planService.Get(req.PlanID)
	if err != nil {
		writeError(c, err)
		return
	}
	appName := plan.AppID
	if app, err := h.appService.Get(plan.AppID); err == nil {
		appName = app.Name
	}

	result, err := h.contentService.GeneratePricingAnnouncement(c.Request.Context(), plan, appName)
	h.finish(c, "pricing-announcement", result, err, req.Publish)
}

// DiscountAnnouncement 折扣码公告
// POST /api/v1/admin/content/discount-announcement
func (h *ContentHandler) DiscountAnnouncement(c *gin.Context) {
	var req dto.DiscountAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	code, err := h.discountService.Get(req.DiscountID)
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := h.contentService.GenerateDiscountAnnouncement(c.Request.Context(), code)
	h.finish(c, "discount-announcement", result, err, req.Publish)
}

// MaintenanceAnnouncement 维护事件公告
// POST /api/v1/admin/content/maintenance-announcement
func (h *ContentHandler) MaintenanceAnnouncement(c *gin.Context) {
	var req dto.MaintenanceAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	event, err := h.maintenanceService.Get(req.EventID)
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := h.contentService.GenerateMaintenanceAnnouncement(c.Request.Context(), event)
	h.finish(c, "maintenance-announcement", result, err, req.Publish)
}

// NotificationText 生成通知标题与正文
// POST /api/v1/admin/content/notification-text
func (h *ContentHandler) NotificationText(c *gin.Context) {
	var req dto.NotificationTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	result, err := h.contentService.GenerateNotificationText(c.Request.Context(), req.Brief, req.Tone)
	h.finish(c, "notification-text", result, err, false)
}

// Image 生成图片并存入媒体库
// POST /api/v1/admin/content/image
func (h *ContentHandler) Image(c *gin.Context) {
	var req dto.GenerateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	result, err := h.contentService.GenerateImage(c.Request.Context(), req.Prompt)
	h.finish(c, "image", result, err, false)
}

// Publish 直接发布到频道
// POST /api/v1/admin/content/publish
func (h *ContentHandler) Publish(c *gin.Context) {
	var req dto.PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	result, err := h.contentService.PublishToTelegram(c.Request.Context(), req.Text, req.ImageURL, req.Pin)
	h.finish(c, "publish", result, err, false)
}

// finish 统一输出 {success, ...}；publish 为 true 时把生成结果发到频道
func (h *ContentHandler) finish(c *gin.Context, flow string, result *service.ContentResult, err error, publish bool) {
	if err != nil {
		h.fail(c, flow, err)
		return
	}

	if publish {
		published, err := h.contentService.PublishToTelegram(c.Request.Context(), result.Text, result.ImageURL, false)
		if err != nil {
			h.fail(c, flow, err)
			return
		}
		result.MessageID = published.MessageID
		result.Posted = true
	}

	response.Success(c, &dto.ContentResponse{
		Success:   result.Success,
		Text:      result.Text,
		Title:     result.Title,
		ImageURL:  result.ImageURL,
		MessageID: result.MessageID,
		Posted:    result.Posted,
	})
}

func (h *ContentHandler) fail(c *gin.Context, flow string, err error) {
	h.log.Error("content flow failed", zap.String("flow", flow), zap.Error(err))

	message := codeMessage(err)
	c.JSON(http.StatusOK, response.Response{
		Code:    response.CodeUpstreamError,
		Message: message,
		Data:    &dto.ContentResponse{Success: false, Error: contentFailureMessage},
	})
}

// codeMessage 配置缺失时提示具体原因，其他错误只给通用信息
func codeMessage(err error) string {
	if errors.Is(err, service.ErrProviderUnavailable) || errors.Is(err, service.ErrStorageNotConfigured) {
		return err.Error()
	}
	if isConfigError(err) {
		return err.Error()
	}
	return "外部服务调用失败"
}
