package middleware

import (
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/user/cinematch/internal/service"
)

const (
	// SessionTokenKey Session 中保存令牌的键
	SessionTokenKey = "token"

	contextUsername = "username"
	contextToken    = "session_token"
)

// OptionalAuth 可选登录中间件（不强制要求登录）
// 先校验 Session 中的令牌，失效时再尝试 Authorization Header
func OptionalAuth(gate *service.SessionGate) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, token := range []string{SessionToken(c), BearerToken(c)} {
			if username, ok := gate.Check(token); ok {
				c.Set(contextUsername, username)
				c.Set(contextToken, token)
				break
			}
		}
		c.Next()
	}
}

// SessionToken 从 Cookie Session 获取令牌
func SessionToken(c *gin.Context) string {
	token, _ := sessions.Default(c).Get(SessionTokenKey).(string)
	return token
}

// BearerToken 从 Authorization Header 获取令牌
func BearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// ActiveToken 当前请求通过校验的令牌（未登录返回空字符串）
func ActiveToken(c *gin.Context) string {
	return c.GetString(contextToken)
}

// GetUsername 从上下文获取用户名（未登录返回空字符串）
func GetUsername(c *gin.Context) string {
	return c.GetString(contextUsername)
}
