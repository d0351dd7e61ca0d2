package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/predict_admin_server/internal/model/dto"
	"github.com/qs3c/predict_admin_server/internal/pkg/response"
	"github.com/qs3c/predict_admin_server/internal/service"
)

type ApplicationHandler struct {
	appService *service.ApplicationService
}

func NewApplicationHandler(appService *service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		appService: appService,
	}
}

// List 应用列表
// GET /api/v1/admin/applications
func (h *ApplicationHandler) List(c *gin.Context) {
	apps, err := h.appService.List()
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, apps)
}

// Get 应用详情
// GET /api/v1/admin/applications/:id
func (h *ApplicationHandler) Get(c *gin.Context) {
	app, err := h.appService.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, app)
}

// Create 创建应用
// POST /api/v1/admin/applications
func (h *ApplicationHandler) Create(c *gin.Context) {
	var req dto.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	app, err := h.appService.Create(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "创建成功", app)
}

// Update 更新应用设置
// PUT /api/v1/admin/applications/:id
func (h *ApplicationHandler) Update(c *gin.Context) {
	var req dto.UpdateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	app, err := h.appService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "更新成功", app)
}

// Delete 删除应用
// DELETE /api/v1/admin/applications/:id
func (h *ApplicationHandler) Delete(c *gin.Context) {
	if err := h.appService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "删除成功", nil)
}

// UpdateStatus 切换维护状态
// PUT /api/v1/admin/applications/:id/status
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.appService.UpdateStatus(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, resp)
}

// History 状态历史
// GET /api/v1/admin/applications/:id/history
func (h *ApplicationHandler) History(c *gin.Context) {
	history, err := h.appService.History(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, history)
}
