package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/expense-tracker/internal/repository"
	"github.com/monocle-dev/expense-tracker/internal/services"
	"github.com/monocle-dev/expense-tracker/internal/types"
	"github.com/monocle-dev/expense-tracker/internal/utils"
	"github.com/shopspring/decimal"
)

// Amounts may be sent as JSON numbers or strings; both are parsed exactly.
type CreateExpenseRequest struct {
	Amount      *decimal.Decimal `json:"amount" binding:"required"`
	Description string           `json:"description" binding:"required"`
	Date        string           `json:"date" binding:"required"`
	CategoryID  uint             `json:"category_id" binding:"required"`
}

type UpdateExpenseRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	Description *string          `json:"description"`
	Date        *string          `json:"date"`
	CategoryID  *uint            `json:"category_id"`
}

func (h *Handler) CreateExpense(ctx *gin.Context) {
	userID, ok := h.currentUserID(ctx)
	if !ok {
		return
	}

	var body CreateExpenseRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondValidation(ctx, "Invalid request")
		return
	}

	date, err := utils.ParseDate(body.Date)

	if err != nil {
		utils.RespondValidation(ctx, err.Error())
		return
	}

	expense, err := h.expenses.Create(ctx.Request.Context(), userID, services.ExpenseInput{
		Amount:      *body.Amount,
		Description: body.Description,
		Date:        date,
		CategoryID:  body.CategoryID,
	})

	if err != nil {
		utils.RespondError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusCreated, types.NewExpenseResponse(expense))
}

func expenseFilterFromQuery(ctx *gin.Context) (repository.ExpenseFilter, error) {
	var filter repository.ExpenseFilter
	var err error

	if filter.StartDate, err = utils.QueryDate(ctx, "start_date"); err != nil {
		return filter, err
	}
	if filter.EndDate, err = utils.QueryDate(ctx, "end_date"); err != nil {
		return filter, err
	}
	if filter.CategoryID, err = utils.QueryUint(ctx, "category_id"); err != nil {
		return filter, err
	}
	if filter.MinAmount, err = utils.QueryDecimal(ctx, "min_amount"); err != nil {
		return filter, err
	}
	if filter.MaxAmount, err = utils.QueryDecimal(ctx, "max_amount"); err != nil {
		return filter, err
	}
	if filter.Page, err = utils.QueryPage(ctx); err != nil {
		return filter, err
	}
	filter.DescriptionContains = ctx.Query("description_contains")

	return filter, nil
}

func (h *Handler) ListExpenses(ctx *gin.Context) {
	userID, ok := h.currentUserID(ctx)
	if !ok {
		return
	}

	filter, err := expenseFilterFromQuery(ctx)

	if err != nil {
		utils.RespondValidation(ctx, err.Error())
		return
	}

	expenses, err := h.expenses.List(ctx.Request.Context(), userID, filter)

	if err != nil {
		utils.RespondError(ctx, h.log, err)
		return
	}

	response := make([]types.ExpenseResponse, 0)
	for expense, err := range expenses {
		if err != nil {
			utils.RespondError(ctx, h.log, err)
			return
		}
		response = append(response, types.NewExpenseResponse(&expense))
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *Handler) ExpenseSummary(ctx *gin.Context) {
	userID, ok := h.currentUserID(ctx)
	if !ok {
		return
	}

	var filter services.SummaryFilter
	var err error

	if filter.StartDate, err = utils.QueryDate(ctx, "start_date"); err != nil {
		utils.RespondValidation(ctx, err.Error())
		return
	}
	if filter.EndDate, err = utils.QueryDate(ctx, "end_date"); err != nil {
		utils.RespondValidation(ctx, err.Error())
		return
	}
	if filter.CategoryID, err = utils.QueryUint(ctx, "category_id"); err != nil {
		utils.RespondValidation(ctx, err.Error())
		return
	}

	summary, err := h.expenses.Summary(ctx.Request.Context(), userID, filter)

	if err != nil {
		utils.RespondError(ctx, h.log, err)
		return
	}

	response := types.SummaryResponse{
		Total:      summary.Total.StringFixed(2),
		Count:      summary.Count,
		Average:    summary.Average.StringFixed(2),
		ByCategory: make([]types.CategoryTotalResponse, 0, len(summary.ByCategory)),
		ByMonth:    make([]types.MonthTotalResponse, 0, len(summary.ByMonth)),
	}
	for _, ct := range summary.ByCategory {
		response.ByCategory = append(response.ByCategory, types.CategoryTotalResponse{
			CategoryID: ct.CategoryID,
			Name:       ct.Name,
			Total:      ct.Total.StringFixed(2),
			Count:      ct.Count,
		})
	}
	for _, mt := range summary.ByMonth {
		response.ByMonth = append(response.ByMonth, types.MonthTotalResponse{
			Month: mt.Month,
			Total: mt.Total.StringFixed(2),
			Count: mt.Count,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *Handler) GetExpense(ctx *gin.Context) {
	userID, ok := h.currentUserID(ctx)
	if !ok {
		return
	}

	expenseID, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		utils.RespondValidation(ctx, err.Error())
		return
	}

	expense, err := h.expenses.Get(ctx.Request.Context(), expenseID, userID)

	if err != nil {
		utils.RespondError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewExpenseResponse(expense))
}

func (h *Handler) UpdateExpense(ctx *gin.Context) {
	userID, ok := h.currentUserID(ctx)
	if !ok {
		return
	}

	expenseID, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		utils.RespondValidation(ctx, err.Error())
		return
	}

	var body UpdateExpenseRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondValidation(ctx, "Invalid request")
		return
	}

	update := services.ExpenseUpdate{
		Amount:      body.Amount,
		Description: body.Description,
		CategoryID:  body.CategoryID,
	}

	if body.Date != nil {
		date, err := utils.ParseDate(*body.Date)
		if err != nil {
			utils.RespondValidation(ctx, err.Error())
			return
		}
		update.Date = &date
	}

	expense, err := h.expenses.Update(ctx.Request.Context(), expenseID, userID, update)

	if err != nil {
		utils.RespondError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewExpenseResponse(expense))
}

func (h *Handler) DeleteExpense(ctx *gin.Context) {
	userID, ok := h.currentUserID(ctx)
	if !ok {
		return
	}

	expenseID, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		utils.RespondValidation(ctx, err.Error())
		return
	}

	if err := h.expenses.Delete(ctx.Request.Context(), expenseID, userID); err != nil {
		utils.RespondError(ctx, h.log, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

