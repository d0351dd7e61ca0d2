package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/predict_admin_server/internal/model/dto"
	"github.com/qs3c/predict_admin_server/internal/pkg/response"
	"github.com/qs3c/predict_admin_server/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// List 用户列表
// GET /api/v1/admin/users?page=&page_size=&search=
func (h *UserHandler) List(c *gin.Context) {
	page, pageSize := pagination(c)

	users, total, err := h.userService.List(page, pageSize, c.Query("search"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessPage(c, total, page, pageSize, users)
}

// Get 用户详情
// GET /api/v1/admin/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.userService.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, user)
}

// ListReferrals 佣金流水
// GET /api/v1/admin/users/:id/referrals
func (h *UserHandler) ListReferrals(c *gin.Context) {
	entries, err := h.userService.ListReferrals(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, entries)
}

// AddReferral 记一笔佣金并更新余额
// POST /api/v1/admin/users/:id/referrals
func (h *UserHandler) AddReferral(c *gin.Context) {
	var req dto.AddReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	user, err := h.userService.AddReferral(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "已记录", user)
}

// ListPricings 订阅记录
// GET /api/v1/admin/users/:id/pricings
func (h *UserHandler) ListPricings(c *gin.Context) {
	records, err := h.userService.ListPricings(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, records)
}

// ActivatePricing 为用户开通套餐
// POST /api/v1/admin/users/:id/pricings
func (h *UserHandler) ActivatePricing(c *gin.Context) {
	var req dto.ActivatePricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	record, err := h.userService.ActivatePricing(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "已开通", record)
}
