package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/expense-tracker/internal/models"
	"github.com/monocle-dev/expense-tracker/internal/services"
	"github.com/monocle-dev/expense-tracker/internal/types"
	"github.com/monocle-dev/expense-tracker/internal/utils"
	"github.com/shopspring/decimal"
)

type CreateShareRequest struct {
	SharedWithUserID uint             `json:"shared_with_user_id" binding:"required"`
	SplitPercentage  *decimal.Decimal `json:"split_percentage" binding:"required"`
}

type UpdateShareStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type UpdateShareSplitRequest struct {
	SplitPercentage *decimal.Decimal `json:"split_percentage" binding:"required"`
}

func (h *Handler) CreateShare(ctx *gin.Context) {
	userID, ok := h.currentUserID(ctx)
	if !ok {
		return
	}

	expenseID, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		utils.RespondValidation(ctx, err.Error())
		return
	}

	var body CreateShareRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondValidation(ctx, "Invalid request")
		return
	}

	share, err := h.sharing.Create(ctx.Request.Context(), userID, expenseID, services.ShareInput{
		SharedWithUserID: body.SharedWithUserID,
		SplitPercentage:  *body.SplitPercentage,
	})

	if err != nil {
		utils.RespondError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusCreated, types.NewShareResponse(share))
}

func (h *Handler) ListShares(ctx *gin.Context) {
	userID, ok := h.currentUserID(ctx)
	if !ok {
		return
	}

	page, err := utils.QueryPage(ctx)

	if err != nil {
		utils.RespondValidation(ctx, err.Error())
		return
	}

	shares, err := h.sharing.List(ctx.Request.Context(), userID, page)

	if err != nil {
		utils.RespondError(ctx, h.log, err)
		return
	}

	response := make([]types.ShareResponse, 0, len(shares))
	for i := range shares {
		response = append(response, types.NewShareResponse(&shares[i]))
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *Handler) GetShare(ctx *gin.Context) {
	userID, ok := h.currentUserID(ctx)
	if !ok {
		return
	}

	shareID, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		utils.RespondValidation(ctx, err.Error())
		return
	}

	share, err := h.sharing.Get(ctx.Request.Context(), userID, shareID)

	if err != nil {
		utils.RespondError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewShareResponse(share))
}

func (h *Handler) UpdateShareStatus(ctx *gin.Context) {
	userID, ok := h.currentUserID(ctx)
	if !ok {
		return
	}

	shareID, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		utils.RespondValidation(ctx, err.Error())
		return
	}

	var body UpdateShareStatusRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondValidation(ctx, "Invalid request")
		return
	}

	share, err := h.sharing.UpdateStatus(ctx.Request.Context(), userID, shareID, models.ShareStatus(body.Status))

	if err != nil {
		utils.RespondError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewShareResponse(share))
}

func (h *Handler) UpdateShareSplit(ctx *gin.Context) {
	userID, ok := h.currentUserID(ctx)
	if !ok {
		return
	}

	shareID, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		utils.RespondValidation(ctx, err.Error())
		return
	}

	var body UpdateShareSplitRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondValidation(ctx, "Invalid request")
		return
	}

	share, err := h.sharing.UpdateSplit(ctx.Request.Context(), userID, shareID, *body.SplitPercentage)

	if err != nil {
		utils.RespondError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewShareResponse(share))
}
