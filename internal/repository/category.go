package repository

import (
	"context"

	"github.com/monocle-dev/expense-tracker/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type categoryRepository struct {
	db *gorm.DB
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(category).Error, "Category")
}

func (r *categoryRepository) FindByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, translate(err, "Category")
	}
	return &category, nil
}

func (r *categoryRepository) FindByName(ctx context.Context, ownerID *uint, name string) (*models.Category, error) {
	query := r.db.WithContext(ctx).Where("name = ?", name)
	if ownerID == nil {
		query = query.Where("user_id IS NULL")
	} else {
		query = query.Where("user_id = ?", *ownerID)
	}

	var category models.Category
	if err := query.First(&category).Error; err != nil {
		return nil, translate(err, "Category")
	}
	return &category, nil
}

func (r *categoryRepository) ListVisible(ctx context.Context, ownerID uint, includeSystem bool, page Page) ([]models.Category, error) {
	page = page.Normalize()

	query := r.db.WithContext(ctx)
	if includeSystem {
		query = query.Where("user_id = ? OR user_id IS NULL", ownerID)
	} else {
		query = query.Where("user_id = ?", ownerID)
	}

	var categories []models.Category
	err := query.
		Order("name ASC").
		Order("id ASC").
		Offset(page.Skip).
		Limit(page.Limit).
		Find(&categories).Error
	if err != nil {
		return nil, translate(err, "Category")
	}
	return categories, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *models.Category) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(category).Error, "Category")
}

func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Category{}, id)
	if result.Error != nil {
		return translate(result.Error, "Category")
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "Category")
	}
	return nil
}

func (r *categoryRepository) DeleteByOwner(ctx context.Context, ownerID uint) error {
	return translate(r.db.WithContext(ctx).Where("user_id = ?", ownerID).Delete(&models.Category{}).Error, "Category")
}
