package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"p2pex.com/pkg/logger"
)

// AccessLog 每个请求一行，慢请求和 5xx 升级为 Warn
func AccessLog(slow time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		cost := time.Since(start)

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("cost", cost),
			zap.String("ip", c.ClientIP()),
		}
		if c.Writer.Status() >= 500 || (slow > 0 && cost > slow) {
			logger.Warn(c, "http access", fields...)
			return
		}
		logger.Debug(c, "http access", fields...)
	}
}
