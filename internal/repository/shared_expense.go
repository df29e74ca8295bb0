package repository

import (
	"context"

	"github.com/monocle-dev/expense-tracker/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type sharedExpenseRepository struct {
	db *gorm.DB
}

func (r *sharedExpenseRepository) Create(ctx context.Context, share *models.SharedExpense) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(share).Error, "Shared expense")
}

// views selects shares together with the owner of the underlying expense.
func (r *sharedExpenseRepository) views(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("shared_expenses").
		Select("shared_expenses.*, expenses.user_id AS owner_id").
		Joins("JOIN expenses ON expenses.id = shared_expenses.expense_id")
}

func (r *sharedExpenseRepository) FindByID(ctx context.Context, id uint) (*models.ShareView, error) {
	var views []models.ShareView
	err := r.views(ctx).Where("shared_expenses.id = ?", id).Limit(1).Scan(&views).Error
	if err != nil {
		return nil, translate(err, "Shared expense")
	}
	if len(views) == 0 {
		return nil, translate(gorm.ErrRecordNotFound, "Shared expense")
	}
	return &views[0], nil
}

func (r *sharedExpenseRepository) ListForParticipant(ctx context.Context, userID uint, page Page) ([]models.ShareView, error) {
	page = page.Normalize()

	var views []models.ShareView
	err := r.views(ctx).
		Where("expenses.user_id = ? OR shared_expenses.shared_with_user_id = ?", userID, userID).
		Order("shared_expenses.id ASC").
		Offset(page.Skip).
		Limit(page.Limit).
		Scan(&views).Error
	if err != nil {
		return nil, translate(err, "Shared expense")
	}
	return views, nil
}

func (r *sharedExpenseRepository) ListOpenByExpense(ctx context.Context, expenseID uint) ([]models.SharedExpense, error) {
	var shares []models.SharedExpense
	err := r.db.WithContext(ctx).
		Where("expense_id = ? AND status <> ?", expenseID, models.ShareStatusRejected).
		Order("id ASC").
		Find(&shares).Error
	if err != nil {
		return nil, translate(err, "Shared expense")
	}
	return shares, nil
}

func (r *sharedExpenseRepository) Update(ctx context.Context, share *models.SharedExpense) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(share).Error, "Shared expense")
}

func (r *sharedExpenseRepository) DeleteByExpense(ctx context.Context, expenseID uint) error {
	err := r.db.WithContext(ctx).Where("expense_id = ?", expenseID).Delete(&models.SharedExpense{}).Error
	return translate(err, "Shared expense")
}

func (r *sharedExpenseRepository) DeleteByUser(ctx context.Context, userID uint) error {
	owned := r.db.Model(&models.Expense{}).Select("id").Where("user_id = ?", userID)
	err := r.db.WithContext(ctx).
		Where("shared_with_user_id = ? OR expense_id IN (?)", userID, owned).
		Delete(&models.SharedExpense{}).Error
	return translate(err, "Shared expense")
}
