package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qs3c/predict_admin_server/internal/model"
	"github.com/qs3c/predict_admin_server/internal/model/dto"
	"github.com/qs3c/predict_admin_server/internal/pkg/response"
	"github.com/qs3c/predict_admin_server/internal/service"
)

type MaintenanceHandler struct {
	maintenanceService *service.MaintenanceService
	contentService     *service.ContentService
	log                *zap.Logger
}

// NewMaintenanceHandler contentService 为 nil 时忽略 announce
func NewMaintenanceHandler(maintenanceService *service.MaintenanceService, contentService *service.ContentService, log *zap.Logger) *MaintenanceHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &MaintenanceHandler{
		maintenanceService: maintenanceService,
		contentService:     contentService,
		log:                log,
	}
}

// List 维护事件，最新的在前；管理端与公开站点共用
// GET /api/v1/admin/maintenance-events?limit=
// GET /api/v1/public/maintenance-events?limit=
func (h *MaintenanceHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	events, err := h.maintenanceService.List(limit)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, events)
}

// Get 维护事件详情
// GET /api/v1/admin/maintenance-events/:id
func (h *MaintenanceHandler) Get(c *gin.Context) {
	event, err := h.maintenanceService.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, event)
}

// Create 创建维护事件
// POST /api/v1/admin/maintenance-events
func (h *MaintenanceHandler) Create(c *gin.Context) {
	var req dto.MaintenanceEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	event, err := h.maintenanceService.Create(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, h.announceIfRequested(c.Request.Context(), req.Announce, event, "创建成功"), event)
}

// Update 更新维护事件
// PUT /api/v1/admin/maintenance-events/:id
func (h *MaintenanceHandler) Update(c *gin.Context) {
	var req dto.MaintenanceEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	event, err := h.maintenanceService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, h.announceIfRequested(c.Request.Context(), req.Announce, event, "更新成功"), event)
}

// Resolve 标记为已解决
// POST /api/v1/admin/maintenance-events/:id/resolve
func (h *MaintenanceHandler) Resolve(c *gin.Context) {
	event, err := h.maintenanceService.Resolve(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "已解决", event)
}

// Delete 删除维护事件
// DELETE /api/v1/admin/maintenance-events/:id
func (h *MaintenanceHandler) Delete(c *gin.Context) {
	if err := h.maintenanceService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "删除成功", nil)
}

// announceIfRequested 发布维护公告，结果体现在响应消息中，失败不影响事件保存
func (h *MaintenanceHandler) announceIfRequested(ctx context.Context, announce bool, event *model.MaintenanceEvent, message string) string {
	if !announce || h.contentService == nil {
		return message
	}

	result, err := h.contentService.GenerateMaintenanceAnnouncement(ctx, event)
	if err == nil {
		_, err = h.contentService.PublishToTelegram(ctx, result.Text, result.ImageURL, false)
	}
	if err != nil {
		h.log.Error("maintenance announcement failed", zap.String("event_id", event.ID), zap.Error(err))
		return message + "，公告发布失败"
	}
	return message + "，公告已发布"
}
