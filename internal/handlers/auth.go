package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/expense-tracker/internal/services"
	"github.com/monocle-dev/expense-tracker/internal/types"
	"github.com/monocle-dev/expense-tracker/internal/utils"
)

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type VerifyEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type PasswordResetConfirmRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

func (h *Handler) Register(ctx *gin.Context) {
	var body RegisterRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondValidation(ctx, "Invalid request")
		return
	}

	user, err := h.users.Register(ctx.Request.Context(), services.RegisterInput{
		Email:    body.Email,
		Username: body.Username,
		Password: body.Password,
	})

	if err != nil {
		utils.RespondError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusCreated, types.NewUserResponse(user))
}

func (h *Handler) Login(ctx *gin.Context) {
	var body LoginRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondValidation(ctx, "Invalid request")
		return
	}

	user, err := h.users.Authenticate(ctx.Request.Context(), body.Email, body.Password)

	if err != nil {
		utils.RespondError(ctx, h.log, err)
		return
	}

	token, expiresAt, err := h.tokens.GenerateJWT(user.ID, user.Email)

	if err != nil {
		utils.RespondError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, types.TokenResponse{
		AccessToken: token,
		TokenType:   types.TokenType,
		ExpiresAt:   expiresAt,
		User:        types.NewUserResponse(user),
	})
}

func (h *Handler) VerifyEmail(ctx *gin.Context) {
	var body VerifyEmailRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondValidation(ctx, "Invalid request")
		return
	}

	user, err := h.users.VerifyEmail(ctx.Request.Context(), body.Token)

	if err != nil {
		utils.RespondError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewUserResponse(user))
}

// RequestPasswordReset answers 202 whether or not the email is registered.
func (h *Handler) RequestPasswordReset(ctx *gin.Context) {
	var body PasswordResetRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondValidation(ctx, "Invalid request")
		return
	}

	if err := h.users.RequestPasswordReset(ctx.Request.Context(), body.Email); err != nil {
		utils.RespondError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusAccepted, gin.H{"message": "If the account exists, a reset link has been sent"})
}

func (h *Handler) ConfirmPasswordReset(ctx *gin.Context) {
	var body PasswordResetConfirmRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondValidation(ctx, "Invalid request")
		return
	}

	if err := h.users.ResetPassword(ctx.Request.Context(), body.Token, body.NewPassword); err != nil {
		utils.RespondError(ctx, h.log, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
