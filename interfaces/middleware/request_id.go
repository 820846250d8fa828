package middleware

import (
	"reelshare/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderRequestID = "X-Request-ID"
	KeyRequestID    = "request_id"
)

// RequestID reuses a caller supplied X-Request-ID or mints one, and logs the request once it completes.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		ctx.Set(KeyRequestID, id)
		ctx.Header(HeaderRequestID, id)
		ctx.Next()

		logger.GetLogger().
			WithField("request_id", id).
			WithField("method", ctx.Request.Method).
			WithField("path", ctx.FullPath()).
			WithField("status", ctx.Writer.Status()).
			Debug("Request handled")
	}
}
