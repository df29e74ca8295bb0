package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	applog "github.com/monocle-dev/expense-tracker/internal/log"
)

func (h *Handler) HealthCheck(c *gin.Context) {
	status := http.StatusOK
	database := "ok"

	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := h.ping(ctx); err != nil {
			h.log.WarnContext(ctx, "Health check failed", applog.FieldError, err)
			status = http.StatusServiceUnavailable
			database = "unavailable"
		}
	}

	c.JSON(status, gin.H{
		"status":    http.StatusText(status),
		"database":  database,
		"message":   "Expense tracker is running",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
