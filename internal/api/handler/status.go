package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/predict_admin_server/internal/pkg/response"
	"github.com/qs3c/predict_admin_server/internal/service"
)

// StatusHandler 公开状态站点
type StatusHandler struct {
	statusService *service.StatusService
}

func NewStatusHandler(statusService *service.StatusService) *StatusHandler {
	return &StatusHandler{
		statusService: statusService,
	}
}

// Status 所有应用的当前状态与 30 天时间线
// GET /api/v1/public/status
func (h *StatusHandler) Status(c *gin.Context) {
	status, err := h.statusService.PublicStatus()
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, status)
}

// MaintenanceMessage 应用的维护提示，?user= 用于目标用户过滤
// GET /api/v1/public/applications/:id/maintenance
func (h *StatusHandler) MaintenanceMessage(c *gin.Context) {
	msg, err := h.statusService.MaintenanceMessage(c.Param("id"), c.Query("user"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, msg)
}
