package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/predict_admin_server/internal/model/dto"
	"github.com/qs3c/predict_admin_server/internal/pkg/response"
	"github.com/qs3c/predict_admin_server/internal/service"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// List 通知列表
// GET /api/v1/admin/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	page, pageSize := pagination(c)

	items, total, err := h.notificationService.List(page, pageSize)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessPage(c, total, page, pageSize, items)
}

// Get 通知详情（含各渠道状态）
// GET /api/v1/admin/notifications/:id
func (h *NotificationHandler) Get(c *gin.Context) {
	n, err := h.notificationService.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, n)
}

// Create 创建并分发通知；渠道失败体现在返回的 status / error 字段中
// POST /api/v1/admin/notifications
func (h *NotificationHandler) Create(c *gin.Context) {
	var req dto.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	n, err := h.notificationService.Create(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "已提交", n)
}

// Unpin 取消频道置顶
// POST /api/v1/admin/notifications/:id/unpin
func (h *NotificationHandler) Unpin(c *gin.Context) {
	if err := h.notificationService.Unpin(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "已取消置顶", nil)
}
