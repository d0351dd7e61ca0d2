package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/predict_admin_server/internal/pkg/response"
)

// CronSecret 校验外部调度器的共享密钥，secret 为空时不校验。
// 支持 Authorization: Bearer <secret> 或 ?secret=
func CronSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		provided := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if provided == "" {
			provided = c.Query("secret")
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			response.CronUnauthorized(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
