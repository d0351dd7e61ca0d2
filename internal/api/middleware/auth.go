package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/predict_admin_server/internal/pkg/jwt"
	"github.com/qs3c/predict_admin_server/internal/pkg/response"
)

const (
	AdminIDKey = "adminID"
)

// Auth 管理员 JWT 认证中间件
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.AuthError(c, "请提供认证信息")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			response.AuthError(c, "认证格式错误")
			c.Abort()
			return
		}

		claims, err := jwt.ParseToken(tokenString, jwtSecret)
		if err != nil {
			response.AuthError(c, "认证失败或已过期")
			c.Abort()
			return
		}

		c.Set(AdminIDKey, claims.AdminID)
		c.Next()
	}
}

// GetAdminID 从上下文获取管理员 ID
func GetAdminID(c *gin.Context) (string, bool) {
	adminID, exists := c.Get(AdminIDKey)
	if !exists {
		return "", false
	}
	id, ok := adminID.(string)
	return id, ok && id != ""
}
