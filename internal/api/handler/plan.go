package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/predict_admin_server/internal/model/dto"
	"github.com/qs3c/predict_admin_server/internal/pkg/response"
	"github.com/qs3c/predict_admin_server/internal/service"
)

type PlanHandler struct {
	planService *service.PlanService
}

func NewPlanHandler(planService *service.PlanService) *PlanHandler {
	return &PlanHandler{
		planService: planService,
	}
}

// ListByApp 应用的套餐，管理端与公开定价页共用
// GET /api/v1/admin/applications/:id/plans
// GET /api/v1/public/plans/:id
func (h *PlanHandler) ListByApp(c *gin.Context) {
	plans, err := h.planService.ListByApp(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, plans)
}

// Create 创建套餐
// POST /api/v1/admin/applications/:id/plans
func (h *PlanHandler) Create(c *gin.Context) {
	var req dto.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	plan, err := h.planService.Create(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "创建成功", plan)
}

// Update 更新套餐
// PUT /api/v1/admin/plans/:id
func (h *PlanHandler) Update(c *gin.Context) {
	var req dto.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	plan, err := h.planService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "更新成功", plan)
}

// Delete 删除套餐
// DELETE /api/v1/admin/plans/:id
func (h *PlanHandler) Delete(c *gin.Context) {
	if err := h.planService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "删除成功", nil)
}
