package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"leaf-care-go/pkg/log"
	"leaf-care-go/pkg/metrics"
)

// RequestLogger 是一个 Gin 中间件，记录每个请求的状态码、耗时与来源。
// 请求体和响应体不记录：登录注册接口携带明文密码。
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		log.Infow("HTTP Request Log",
			"statusCode", c.Writer.Status(),
			"latency", time.Since(startTime).String(),
			"clientIP", c.ClientIP(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"bytes", c.Writer.Size(),
		)
	}
}

// Metrics 记录 Prometheus 请求指标，path 使用路由模板以控制标签基数。
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(startTime).Seconds())
	}
}
