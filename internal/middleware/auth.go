// Package middleware 提供了处理 HTTP 请求的中间件。
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"leaf-care-go/internal/repository"
	"leaf-care-go/internal/service"
	"leaf-care-go/pkg/log"
	"leaf-care-go/pkg/token"
)

// 存入 gin.Context 的键
const (
	ContextUser   = "user"
	ContextClaims = "claims"
	ContextToken  = "token"
)

// TokenFromRequest 从 Authorization 头提取 Bearer token。
// WebSocket 握手无法自定义请求头，因此也接受 ?token= 查询参数。
func TokenFromRequest(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			return "", false
		}
		return strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix)), true
	}
	if q := c.Query("token"); q != "" {
		return q, true
	}
	return "", false
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": message, "data": nil})
}

// AuthMiddleware 创建一个 Gin 中间件，用于 JWT 认证。
// 它会验证 access token、检查黑名单，并将完整的 User 对象存入 Gin 的上下文中。
// blacklist 可为 nil。
func AuthMiddleware(jwtManager *token.JWTManager, userService service.UserService, blacklist repository.TokenBlacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := TokenFromRequest(c)
		if !ok || tokenString == "" {
			unauthorized(c, "请求未包含有效的授权信息")
			return
		}

		claims, err := jwtManager.VerifyAccessToken(tokenString)
		if err != nil {
			unauthorized(c, "无效或已过期的 token")
			return
		}

		if blacklist != nil {
			listed, err := blacklist.Contains(c.Request.Context(), tokenString)
			if err != nil {
				// 黑名单不可用时放行，只记录日志
				log.Warnf("检查 token 黑名单失败: %v", err)
			} else if listed {
				unauthorized(c, "token 已失效，请重新登录")
				return
			}
		}

		// 根据 token 中的用户 ID 获取完整的用户信息，用户被删除后 token 随之失效
		user, err := userService.GetProfile(claims.UserID)
		if err != nil {
			unauthorized(c, "用户不存在")
			return
		}

		c.Set(ContextUser, user)
		c.Set(ContextClaims, claims)
		c.Set(ContextToken, tokenString)
		c.Next()
	}
}
