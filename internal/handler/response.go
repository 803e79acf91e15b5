// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"leaf-care-go/internal/middleware"
	"leaf-care-go/internal/model"
	"leaf-care-go/internal/service"
	"leaf-care-go/pkg/llm"
	"leaf-care-go/pkg/log"
)

// respond 输出统一的 {"code","message","data"} 结构。
func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{"code": status, "message": message, "data": data})
}

func ok(c *gin.Context, message string, data interface{}) {
	respond(c, http.StatusOK, message, data)
}

func badRequest(c *gin.Context, message string) {
	respond(c, http.StatusBadRequest, message, nil)
}

// currentUser 取出 AuthMiddleware 放入上下文的用户。
func currentUser(c *gin.Context) *model.User {
	v, exists := c.Get(middleware.ContextUser)
	if !exists {
		return nil
	}
	u, _ := v.(*model.User)
	return u
}

// idParam 解析路径中的数字 ID。
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "无效的ID")
		return 0, false
	}
	return uint(id), true
}

// statusOf 将业务错误映射为 HTTP 状态码和对外消息。
func statusOf(err error) (int, string) {
	var upstream *llm.UpstreamError
	switch {
	case errors.Is(err, service.ErrUsernameExists), errors.Is(err, service.ErrEmailExists):
		return http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, service.ErrInvalidRefreshToken):
		return http.StatusUnauthorized, "无效的 refresh token"
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrPlantNotFound),
		errors.Is(err, service.ErrConversationNotFound),
		errors.Is(err, service.ErrKnowledgeNotFound),
		errors.Is(err, service.ErrDigestNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrInvalidPlant),
		errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, service.ErrInvalidImage):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrAPIKeyMissing):
		return http.StatusInternalServerError, err.Error()
	case errors.As(err, &upstream):
		status := upstream.StatusCode
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		return status, fmt.Sprintf("DeepSeek API错误: %s", upstream.Body)
	case errors.Is(err, llm.ErrNetwork):
		return http.StatusInternalServerError, fmt.Sprintf("网络请求错误: %v", err)
	case errors.Is(err, llm.ErrEmptyResponse):
		return http.StatusBadGateway, "AI服务暂时不可用"
	default:
		return http.StatusInternalServerError, "服务器内部错误"
	}
}

func writeError(c *gin.Context, op string, err error) {
	status, message := statusOf(err)
	if status >= http.StatusInternalServerError {
		log.Errorf("%s: %v", op, err)
	} else {
		log.Warnf("%s: %v", op, err)
	}
	respond(c, status, message, nil)
}
