// Package middleware 提供 HTTP 中间件
package middleware

import (
	"strings"

	"novelforge-api/internal/interfaces/http/dto"
	"novelforge-api/pkg/errors"
	"novelforge-api/pkg/logger"
	"novelforge-api/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthConfig 认证配置
type AuthConfig struct {
	// Secret JWT 密钥
	Secret string
	// Issuer JWT 签发者
	Issuer string
	// SkipPaths 跳过认证的路径
	SkipPaths []string
	// Enabled 是否启用认证
	Enabled bool
}

// DefaultSkipPaths 默认跳过认证的路径
var DefaultSkipPaths = []string{
	"/health",
	"/ready",
	"/live",
	"/metrics",
}

// Auth 认证中间件
// 缺失 Authorization 头返回 AUTH_REQUIRED，头格式错误或令牌无效返回
// AUTH_HEADER_INVALID，两者均为 401
func Auth(cfg AuthConfig) gin.HandlerFunc {
	jwtManager := utils.NewJWTManager(cfg.Secret, cfg.Issuer)

	skipMap := make(map[string]bool)
	for _, path := range cfg.SkipPaths {
		skipMap[path] = true
	}

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		if skipMap[c.Request.URL.Path] {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			dto.AbortError(c, errors.ErrAuthRequired)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			dto.AbortError(c, errors.ErrAuthHeaderInvalid)
			return
		}

		claims, err := jwtManager.ParseToken(parts[1])
		if err != nil {
			dto.AbortError(c, errors.ErrAuthHeaderInvalid)
			return
		}

		// 仅接受 AccessToken
		if claims.Type != "access" {
			dto.AbortError(c, errors.ErrAuthHeaderInvalid)
			return
		}

		// 注入用户信息到 Context
		c.Set("user_id", claims.UserID)
		ctx := logger.WithContext(c.Request.Context(), logger.UserIDKey, claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
