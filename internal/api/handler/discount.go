package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/predict_admin_server/internal/model/dto"
	"github.com/qs3c/predict_admin_server/internal/pkg/response"
	"github.com/qs3c/predict_admin_server/internal/service"
)

type DiscountHandler struct {
	discountService *service.DiscountService
}

func NewDiscountHandler(discountService *service.DiscountService) *DiscountHandler {
	return &DiscountHandler{
		discountService: discountService,
	}
}

// List 折扣码列表，附带推导出的状态
// GET /api/v1/admin/discount-codes
func (h *DiscountHandler) List(c *gin.Context) {
	codes, err := h.discountService.List()
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, codes)
}

// Get 折扣码详情
// GET /api/v1/admin/discount-codes/:id
func (h *DiscountHandler) Get(c *gin.Context) {
	code, err := h.discountService.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, code)
}

// Create 创建折扣码
// POST /api/v1/admin/discount-codes
func (h *DiscountHandler) Create(c *gin.Context) {
	var req dto.DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	code, err := h.discountService.Create(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "创建成功", code)
}

// Update 更新折扣码
// PUT /api/v1/admin/discount-codes/:id
func (h *DiscountHandler) Update(c *gin.Context) {
	var req dto.DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	code, err := h.discountService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "更新成功", code)
}

// Delete 删除折扣码
// DELETE /api/v1/admin/discount-codes/:id
func (h *DiscountHandler) Delete(c *gin.Context) {
	if err := h.discountService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "删除成功", nil)
}

// Validate 公开站点校验折扣码
// POST /api/v1/public/discounts/validate
func (h *DiscountHandler) Validate(c *gin.Context) {
	var req dto.ValidateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.discountService.Validate(&req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, resp)
}
