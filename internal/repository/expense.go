package repository

import (
	"context"
	"iter"
	"strings"

	"github.com/monocle-dev/expense-tracker/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type expenseRepository struct {
	db *gorm.DB
}

func (r *expenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(expense).Error, "Expense")
}

func (r *expenseRepository) FindByID(ctx context.Context, id uint) (*models.Expense, error) {
	var expense models.Expense
	if err := r.db.WithContext(ctx).First(&expense, id).Error; err != nil {
		return nil, translate(err, "Expense")
	}
	return &expense, nil
}

func (r *expenseRepository) Stream(ctx context.Context, ownerID uint, filter ExpenseFilter) iter.Seq2[models.Expense, error] {
	return func(yield func(models.Expense, error) bool) {
		db := r.db.WithContext(ctx)

		rows, err := r.filtered(db, ownerID, filter).Rows()
		if err != nil {
			yield(models.Expense{}, translate(err, "Expense"))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var expense models.Expense
			if err := db.ScanRows(rows, &expense); err != nil {
				yield(models.Expense{}, err)
				return
			}
			if !yield(expense, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(models.Expense{}, err)
		}
	}
}

func (r *expenseRepository) filtered(db *gorm.DB, ownerID uint, filter ExpenseFilter) *gorm.DB {
	page := filter.Page.Normalize()

	query := db.Model(&models.Expense{}).Where("user_id = ?", ownerID)

	if filter.StartDate != nil {
		query = query.Where("date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("date <= ?", *filter.EndDate)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.MinAmount != nil {
		query = query.Where("amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		query = query.Where("amount <= ?", *filter.MaxAmount)
	}
	if term := strings.TrimSpace(filter.DescriptionContains); term != "" {
		query = query.Where("LOWER(description) LIKE ?", "%"+strings.ToLower(term)+"%")
	}

	return query.
		Order("date DESC").
		Order("id DESC").
		Offset(page.Skip).
		Limit(page.Limit)
}

func (r *expenseRepository) CountByCategory(ctx context.Context, categoryID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Expense{}).Where("category_id = ?", categoryID).Count(&count).Error
	if err != nil {
		return 0, translate(err, "Expense")
	}
	return count, nil
}

func (r *expenseRepository) Update(ctx context.Context, expense *models.Expense) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(expense).Error, "Expense")
}

func (r *expenseRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Expense{}, id)
	if result.Error != nil {
		return translate(result.Error, "Expense")
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "Expense")
	}
	return nil
}

func (r *expenseRepository) DeleteByOwner(ctx context.Context, ownerID uint) error {
	return translate(r.db.WithContext(ctx).Where("user_id = ?", ownerID).Delete(&models.Expense{}).Error, "Expense")
}
