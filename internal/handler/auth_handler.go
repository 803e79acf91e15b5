package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"leaf-care-go/internal/service"
	"leaf-care-go/pkg/log"
)

// AuthHandler 负责注册、登录与刷新 token。
type AuthHandler struct {
	userService service.UserService
}

// NewAuthHandler 创建一个新的 AuthHandler 实例。
func NewAuthHandler(userService service.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// RegisterRequest 定义了用户注册 API 的请求体结构。
type RegisterRequest struct {
	Username string `json:"username" binding:"required,max=50"`
	Email    string `json:"email" binding:"required,email,max=100"`
	Password string `json:"password" binding:"required"`
}

// Register 处理用户注册请求。
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Register: Invalid request payload, error: %v", err)
		badRequest(c, "无效的请求负载：用户名、邮箱和密码不能为空")
		return
	}

	user, err := h.userService.Register(req.Username, req.Email, req.Password)
	if err != nil {
		writeError(c, "Register", err)
		return
	}

	ok(c, "注册成功", gin.H{"user_id": user.ID, "username": user.Username})
}

// LoginRequest 中 account 可以是用户名或邮箱。
type LoginRequest struct {
	Account  string `json:"account" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 处理用户登录请求。
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Login: Invalid request payload, error: %v", err)
		badRequest(c, "无效的请求负载：账号和密码不能为空")
		return
	}

	pair, err := h.userService.Login(req.Account, req.Password)
	if err != nil {
		writeError(c, "Login", err)
		return
	}

	log.Infof("User '%s' logged in successfully", pair.User.Username)
	ok(c, "登录成功", gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"token_type":    "bearer",
		"user_id":       pair.User.ID,
		"username":      pair.User.Username,
	})
}

// RefreshTokenRequest 定义了刷新 token API 的请求体结构。
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshToken 处理刷新 token 的请求。
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("RefreshToken: Invalid request payload, error: %v", err)
		badRequest(c, "无效的请求负载：refreshToken 不能为空")
		return
	}

	pair, err := h.userService.RefreshToken(req.RefreshToken)
	if err != nil {
		writeError(c, "RefreshToken", err)
		return
	}

	log.Info("Token refreshed successfully")
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Token refreshed successfully",
		"data": gin.H{
			"token":        pair.AccessToken,
			"refreshToken": pair.RefreshToken,
		},
	})
}
