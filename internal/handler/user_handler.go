package handler

import (
	"github.com/gin-gonic/gin"

	"leaf-care-go/internal/middleware"
	"leaf-care-go/internal/service"
	"leaf-care-go/pkg/log"
)

// UserHandler 负责处理当前登录用户的请求。
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler 创建一个新的 UserHandler 实例。
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetProfile 返回当前用户信息。
func (h *UserHandler) GetProfile(c *gin.Context) {
	ok(c, "获取成功", currentUser(c))
}

// Logout 使当前 access token 失效。
func (h *UserHandler) Logout(c *gin.Context) {
	tokenString := c.GetString(middleware.ContextToken)
	if err := h.userService.Logout(c.Request.Context(), tokenString); err != nil {
		writeError(c, "Logout", err)
		return
	}
	log.Infof("User '%s' logged out", currentUser(c).Username)
	ok(c, "已退出登录", nil)
}
