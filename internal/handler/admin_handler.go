package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"leaf-care-go/internal/service"
)

// AdminHandler 负责处理所有与管理员相关的 API 请求。
type AdminHandler struct {
	adminService service.AdminService
}

// NewAdminHandler 创建一个新的 AdminHandler 实例。
func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// ListUsers 分页列出用户，参数 page 从 1 开始，size 默认 10。
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	resp, err := h.adminService.ListUsers(page, size)
	if err != nil {
		writeError(c, "ListUsers", err)
		return
	}
	ok(c, "Users retrieved successfully", resp)
}
