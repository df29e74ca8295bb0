package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/monocle-dev/expense-tracker/internal/apperrors"
	applog "github.com/monocle-dev/expense-tracker/internal/log"
	"github.com/monocle-dev/expense-tracker/internal/models"
	"github.com/monocle-dev/expense-tracker/internal/repository"
)

// DefaultSystemCategories are created by the seed command when no names are
// given.
var DefaultSystemCategories = []string{
	"Groceries",
	"Transportation",
	"Entertainment",
	"Healthcare",
	"Shopping",
	"Utilities",
	"Restaurants",
	"Travel",
}

type CategoryInput struct {
	Name        string
	Description *string
}

// CategoryUpdate changes only the fields that are set. An empty description
// clears it.
type CategoryUpdate struct {
	Name        *string
	Description *string
}

type CategoryService struct {
	store            repository.Store
	systemCategories bool
	log              *applog.Logger
}

func NewCategoryService(store repository.Store, systemCategories bool, log *applog.Logger) *CategoryService {
	return &CategoryService{
		store:            store,
		systemCategories: systemCategories,
		log:              log.WithComponent(applog.ComponentCategory),
	}
}

// visible reports whether the caller may see and use the category.
func (s *CategoryService) visible(category *models.Category, callerID uint) bool {
	if category.IsSystem() {
		return s.systemCategories
	}
	return category.OwnedBy(callerID)
}

func (s *CategoryService) Create(ctx context.Context, ownerID uint, in CategoryInput) (*models.Category, error) {
	name, err := normalizeCategoryName(in.Name)
	if err != nil {
		return nil, err
	}
	description, err := normalizeDescription(in.Description)
	if err != nil {
		return nil, err
	}

	category := &models.Category{
		Name:        name,
		Description: description,
		UserID:      &ownerID,
	}

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := ensureNameFree(ctx, tx, &ownerID, name, 0); err != nil {
			return err
		}
		return tx.Categories().Create(ctx, category)
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "Category created",
		applog.FieldUserID, ownerID,
		applog.FieldCategoryID, category.ID)
	return category, nil
}

// ensureNameFree fails when another category in the same scope already uses
// name. selfID is ignored so a rename to the current name is allowed.
func ensureNameFree(ctx context.Context, tx repository.Store, ownerID *uint, name string, selfID uint) error {
	existing, err := tx.Categories().FindByName(ctx, ownerID, name)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID == selfID {
		return nil
	}
	return apperrors.Duplicate(fmt.Sprintf("Category '%s' already exists", name))
}

// List returns the system categories, when enabled, and the owner's own,
// ordered by name.
func (s *CategoryService) List(ctx context.Context, ownerID uint, page repository.Page) ([]models.Category, error) {
	return s.store.Categories().ListVisible(ctx, ownerID, s.systemCategories, page)
}

func (s *CategoryService) Get(ctx context.Context, id, callerID uint) (*models.Category, error) {
	category, err := s.store.Categories().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.visible(category, callerID) {
		return nil, apperrors.NotFound("Category not found")
	}
	return category, nil
}

// findOwned loads a category the caller owns. System and foreign categories
// are reported as missing.
func findOwned(ctx context.Context, tx repository.Store, id, callerID uint) (*models.Category, error) {
	category, err := tx.Categories().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !category.OwnedBy(callerID) {
		return nil, apperrors.NotFound("Category not found")
	}
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, id, callerID uint, in CategoryUpdate) (*models.Category, error) {
	var category *models.Category

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		category, err = findOwned(ctx, tx, id, callerID)
		if err != nil {
			return err
		}

		if in.Name != nil {
			name, err := normalizeCategoryName(*in.Name)
			if err != nil {
				return err
			}
			if err := ensureNameFree(ctx, tx, category.UserID, name, category.ID); err != nil {
				return err
			}
			category.Name = name
		}
		if in.Description != nil {
			description, err := normalizeDescription(in.Description)
			if err != nil {
				return err
			}
			category.Description = description
		}

		return tx.Categories().Update(ctx, category)
	})
	if err != nil {
		return nil, err
	}

	return category, nil
}

// Delete is refused while any expense still uses the category.
func (s *CategoryService) Delete(ctx context.Context, id, callerID uint) error {
	return s.store.Transaction(ctx, func(tx repository.Store) error {
		category, err := findOwned(ctx, tx, id, callerID)
		if err != nil {
			return err
		}

		count, err := tx.Expenses().CountByCategory(ctx, category.ID)
		if err != nil {
			return err
		}
		if count > 0 {
			return apperrors.New(apperrors.KindReferentialConflict,
				fmt.Sprintf("Category is used by %d expense(s)", count))
		}

		return tx.Categories().Delete(ctx, category.ID)
	})
}

// SeedSystem creates the named system categories that do not exist yet and
// returns the ones it created.
func (s *CategoryService) SeedSystem(ctx context.Context, names []string) ([]models.Category, error) {
	var created []models.Category

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		for _, raw := range names {
			name, err := normalizeCategoryName(raw)
			if err != nil {
				return fmt.Errorf("%q: %w", raw, err)
			}

			_, err = tx.Categories().FindByName(ctx, nil, name)
			if err == nil {
				continue
			}
			if !errors.Is(err, apperrors.ErrNotFound) {
				return err
			}

			category := models.Category{Name: name}
			if err := tx.Categories().Create(ctx, &category); err != nil {
				return err
			}
			created = append(created, category)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}
