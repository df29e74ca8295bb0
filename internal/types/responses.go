package types

import (
	"time"

	"github.com/monocle-dev/expense-tracker/internal/models"
)

// Amounts and percentages are rendered as strings with exactly two decimals
// so clients never parse them as floats.
const decimalPlaces = 2

type UserResponse struct {
	ID         uint      `json:"id"`
	Email      string    `json:"email"`
	Username   string    `json:"username"`
	IsActive   bool      `json:"is_active"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:         user.ID,
		Email:      user.Email,
		Username:   user.Username,
		IsActive:   user.IsActive,
		IsVerified: user.IsVerified,
		CreatedAt:  user.CreatedAt,
	}
}

type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        UserResponse `json:"user"`
}

type CategoryResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	UserID      *uint     `json:"user_id"`
	IsSystem    bool      `json:"is_system"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewCategoryResponse(category *models.Category) CategoryResponse {
	return CategoryResponse{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		UserID:      category.UserID,
		IsSystem:    category.IsSystem(),
		CreatedAt:   category.CreatedAt,
		UpdatedAt:   category.UpdatedAt,
	}
}

type ExpenseResponse struct {
	ID          uint      `json:"id"`
	Amount      string    `json:"amount"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	CategoryID  uint      `json:"category_id"`
	UserID      uint      `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewExpenseResponse(expense *models.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          expense.ID,
		Amount:      expense.Amount.StringFixed(decimalPlaces),
		Description: expense.Description,
		Date:        time.Time(expense.Date).Format(time.DateOnly),
		CategoryID:  expense.CategoryID,
		UserID:      expense.UserID,
		CreatedAt:   expense.CreatedAt,
		UpdatedAt:   expense.UpdatedAt,
	}
}

type ShareResponse struct {
	ID               uint      `json:"id"`
	ExpenseID        uint      `json:"expense_id"`
	OwnerID          uint      `json:"owner_id"`
	SharedWithUserID uint      `json:"shared_with_user_id"`
	SplitPercentage  string    `json:"split_percentage"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func NewShareResponse(view *models.ShareView) ShareResponse {
	return ShareResponse{
		ID:               view.ID,
		ExpenseID:        view.ExpenseID,
		OwnerID:          view.OwnerID,
		SharedWithUserID: view.SharedWithUserID,
		SplitPercentage:  view.SplitPercentage.StringFixed(decimalPlaces),
		Status:           string(view.Status),
		CreatedAt:        view.CreatedAt,
		UpdatedAt:        view.UpdatedAt,
	}
}

type CategoryTotalResponse struct {
	CategoryID uint   `json:"category_id"`
	Name       string `json:"name"`
	Total      string `json:"total"`
	Count      int    `json:"count"`
}

type MonthTotalResponse struct {
	Month string `json:"month"`
	Total string `json:"total"`
	Count int    `json:"count"`
}

type SummaryResponse struct {
	Total      string                  `json:"total"`
	Count      int                     `json:"count"`
	Average    string                  `json:"average"`
	ByCategory []CategoryTotalResponse `json:"by_category"`
	ByMonth    []MonthTotalResponse    `json:"by_month"`
}
