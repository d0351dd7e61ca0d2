package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/predict_admin_server/internal/pkg/ai"
	"github.com/qs3c/predict_admin_server/internal/pkg/response"
	"github.com/qs3c/predict_admin_server/internal/pkg/telegram"
	"github.com/qs3c/predict_admin_server/internal/service"
)

// pagination 读取 page / page_size，非法值回落到默认
func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

// writeError 把 service 层的哨兵错误映射为统一响应，未知错误只返回通用消息
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrApplicationNotFound),
		errors.Is(err, service.ErrPlanNotFound),
		errors.Is(err, service.ErrDiscountNotFound),
		errors.Is(err, service.ErrEventNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrMediaNotFound),
		errors.Is(err, service.ErrNotificationNotFound),
		errors.Is(err, service.ErrAdminNotFound):
		response.NotFoundError(c, err.Error())
	case errors.Is(err, service.ErrDiscountCodeExists),
		errors.Is(err, service.ErrEventAlreadyResolved),
		errors.Is(err, service.ErrNotPinned):
		response.DuplicateError(c, err.Error())
	case errors.Is(err, service.ErrInvalidValidity),
		errors.Is(err, service.ErrPlanMismatch),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrEmptyFile),
		errors.Is(err, service.ErrFileTooLarge),
		errors.Is(err, service.ErrUnsupportedMediaType),
		errors.Is(err, service.ErrUnknownCollection):
		response.ParamError(c, err.Error())
	case errors.Is(err, service.ErrStorageNotConfigured),
		errors.Is(err, service.ErrMessengerDisabled),
		errors.Is(err, service.ErrEmailQueueDisabled),
		errors.Is(err, service.ErrProviderUnavailable):
		response.UpstreamError(c, err.Error())
	case isConfigError(err):
		response.UpstreamError(c, err.Error())
	case errors.As(err, new(*telegram.APIError)):
		_ = c.Error(err)
		response.UpstreamError(c, "")
	default:
		_ = c.Error(err)
		response.ServerError(c, "")
	}
}

// isConfigError 缺少 Telegram / AI 凭据
func isConfigError(err error) bool {
	return errors.Is(err, telegram.ErrMissingToken) ||
		errors.Is(err, telegram.ErrMissingChatID) ||
		errors.Is(err, ai.ErrMissingAPIKey)
}
