package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Health 是存活检查接口。
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "植物养护AI助手后端运行正常",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
