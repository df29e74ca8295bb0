package handlers

import (
	"github.com/gin-gonic/gin"
)

// WebSocket streams share notifications for the authenticated user.
func (h *Handler) WebSocket(ctx *gin.Context) {
	userID, ok := h.currentUserID(ctx)
	if !ok {
		return
	}

	h.hub.ServeWS(ctx.Writer, ctx.Request, userID)
}
