package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/expense-tracker/internal/apperrors"
	"github.com/monocle-dev/expense-tracker/internal/services"
	"github.com/monocle-dev/expense-tracker/internal/types"
	"github.com/monocle-dev/expense-tracker/internal/utils"
)

type UpdateUserRequest struct {
	Email    *string `json:"email" binding:"omitempty,email"`
	Username *string `json:"username"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

type DeleteUserRequest struct {
	Password string `json:"password" binding:"required"`
}

// currentUserID aborts with 401 when the auth middleware did not run.
func (h *Handler) currentUserID(ctx *gin.Context) (uint, bool) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		utils.RespondError(ctx, h.log, apperrors.Unauthorized("User not authenticated"))
		return 0, false
	}

	return userID, true
}

func (h *Handler) Me(ctx *gin.Context) {
	userID, ok := h.currentUserID(ctx)
	if !ok {
		return
	}

	user, err := h.users.GetByID(ctx.Request.Context(), userID)

	if err != nil {
		utils.RespondError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewUserResponse(user))
}

func (h *Handler) UpdateMe(ctx *gin.Context) {
	userID, ok := h.currentUserID(ctx)
	if !ok {
		return
	}

	var body UpdateUserRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondValidation(ctx, "Invalid request")
		return
	}

	user, err := h.users.Update(ctx.Request.Context(), userID, services.UpdateUserInput{
		Email:    body.Email,
		Username: body.Username,
	})

	if err != nil {
		utils.RespondError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewUserResponse(user))
}

func (h *Handler) ChangePassword(ctx *gin.Context) {
	userID, ok := h.currentUserID(ctx)
	if !ok {
		return
	}

	var body ChangePasswordRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondValidation(ctx, "Invalid request")
		return
	}

	if err := h.users.ChangePassword(ctx.Request.Context(), userID, body.CurrentPassword, body.NewPassword); err != nil {
		utils.RespondError(ctx, h.log, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *Handler) RequestVerification(ctx *gin.Context) {
	userID, ok := h.currentUserID(ctx)
	if !ok {
		return
	}

	if err := h.users.RequestVerification(ctx.Request.Context(), userID); err != nil {
		utils.RespondError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusAccepted, gin.H{"message": "Verification email requested"})
}

func (h *Handler) DeleteMe(ctx *gin.Context) {
	userID, ok := h.currentUserID(ctx)
	if !ok {
		return
	}

	var body DeleteUserRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondValidation(ctx, "Password is required for account deletion")
		return
	}

	if err := h.users.Delete(ctx.Request.Context(), userID, body.Password); err != nil {
		utils.RespondError(ctx, h.log, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
