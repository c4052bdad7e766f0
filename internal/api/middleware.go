package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/julianstephens/neurozen/internal/constants"
	"github.com/julianstephens/neurozen/internal/logger"
)

const requestIDKey = "requestID"

// RequestLogger tags each request with an id and logs it once it completes.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(constants.RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(requestIDKey, requestID)
		c.Header(constants.RequestIDHeader, requestID)

		c.Next()

		logger.Info("request",
			"requestID", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"clientIP", c.ClientIP(),
			"latency", time.Since(start).String(),
		)
	}
}
