package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/expense-tracker/internal/services"
	"github.com/monocle-dev/expense-tracker/internal/types"
	"github.com/monocle-dev/expense-tracker/internal/utils"
)

type CreateCategoryRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (h *Handler) CreateCategory(ctx *gin.Context) {
	userID, ok := h.currentUserID(ctx)
	if !ok {
		return
	}

	var body CreateCategoryRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondValidation(ctx, "Invalid request")
		return
	}

	category, err := h.categories.Create(ctx.Request.Context(), userID, services.CategoryInput{
		Name:        body.Name,
		Description: body.Description,
	})

	if err != nil {
		utils.RespondError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusCreated, types.NewCategoryResponse(category))
}

func (h *Handler) ListCategories(ctx *gin.Context) {
	userID, ok := h.currentUserID(ctx)
	if !ok {
		return
	}

	page, err := utils.QueryPage(ctx)

	if err != nil {
		utils.RespondValidation(ctx, err.Error())
		return
	}

	categories, err := h.categories.List(ctx.Request.Context(), userID, page)

	if err != nil {
		utils.RespondError(ctx, h.log, err)
		return
	}

	response := make([]types.CategoryResponse, 0, len(categories))
	for i := range categories {
		response = append(response, types.NewCategoryResponse(&categories[i]))
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *Handler) GetCategory(ctx *gin.Context) {
	userID, ok := h.currentUserID(ctx)
	if !ok {
		return
	}

	categoryID, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		utils.RespondValidation(ctx, err.Error())
		return
	}

	category, err := h.categories.Get(ctx.Request.Context(), categoryID, userID)

	if err != nil {
		utils.RespondError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewCategoryResponse(category))
}

func (h *Handler) UpdateCategory(ctx *gin.Context) {
	userID, ok := h.currentUserID(ctx)
	if !ok {
		return
	}

	categoryID, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		utils.RespondValidation(ctx, err.Error())
		return
	}

	var body UpdateCategoryRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondValidation(ctx, "Invalid request")
		return
	}

	category, err := h.categories.Update(ctx.Request.Context(), categoryID, userID, services.CategoryUpdate{
		Name:        body.Name,
		Description: body.Description,
	})

	if err != nil {
		utils.RespondError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewCategoryResponse(category))
}

func (h *Handler) DeleteCategory(ctx *gin.Context) {
	userID, ok := h.currentUserID(ctx)
	if !ok {
		return
	}

	categoryID, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		utils.RespondValidation(ctx, err.Error())
		return
	}

	if err := h.categories.Delete(ctx.Request.Context(), categoryID, userID); err != nil {
		utils.RespondError(ctx, h.log, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
