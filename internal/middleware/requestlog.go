package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	applog "github.com/monocle-dev/expense-tracker/internal/log"
	"github.com/monocle-dev/expense-tracker/internal/types"
)

// RequestLogger tags every request with an id and logs it once it has been
// served, at a level that follows the status code.
func RequestLogger(log *applog.Logger) gin.HandlerFunc {
	log = log.WithComponent(applog.ComponentHTTP)

	return func(ctx *gin.Context) {
		start := time.Now()

		requestID := ctx.GetHeader(types.RequestIDHeader)
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.NewString()
		}
		ctx.Set(types.ContextRequestIDKey, requestID)
		ctx.Header(types.RequestIDHeader, requestID)

		ctx.Next()

		status := ctx.Writer.Status()
		args := []any{
			applog.FieldRequestID, requestID,
			applog.FieldMethod, ctx.Request.Method,
			applog.FieldPath, ctx.Request.URL.Path,
			applog.FieldStatusCode, status,
			applog.FieldDuration, time.Since(start).Milliseconds(),
			applog.FieldClientIP, ctx.ClientIP(),
			applog.FieldUserAgent, ctx.Request.UserAgent(),
		}
		if user, ok := ctx.Get(types.ContextUserKey); ok {
			if authenticated, ok := user.(types.AuthenticatedUser); ok {
				args = append(args, applog.FieldUserID, authenticated.ID)
			}
		}

		log.Log(ctx.Request.Context(), levelFor(status), "HTTP request", args...)
	}
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
