// Package repository is the only code that talks to gorm. Every method takes
// the request context, returns plain model values and reports storage
// failures as *apperrors.Error kinds.
package repository

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/monocle-dev/expense-tracker/internal/apperrors"
	"github.com/monocle-dev/expense-tracker/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	DefaultLimit = 100
	MaxLimit     = 100
)

// Page is an offset window over an ordered listing.
type Page struct {
	Skip  int
	Limit int
}

// Normalize clamps the window to the allowed range.
func (p Page) Normalize() Page {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 || p.Limit > MaxLimit {
		p.Limit = DefaultLimit
	}
	return p
}

// ExpenseFilter narrows an expense listing. Nil fields are not applied.
type ExpenseFilter struct {
	StartDate           *time.Time
	EndDate             *time.Time
	CategoryID          *uint
	MinAmount           *decimal.Decimal
	MaxAmount           *decimal.Decimal
	DescriptionContains string
	Page                Page
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByVerificationToken(ctx context.Context, token string) (*models.User, error)
	FindByPasswordResetToken(ctx context.Context, token string) (*models.User, error)
	// ClearExpiredResetTokens drops reset tokens that expired before now and
	// returns how many users were touched.
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
}

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	FindByID(ctx context.Context, id uint) (*models.Category, error)
	// FindByName looks up a category by exact name; a nil owner means the
	// system categories.
	FindByName(ctx context.Context, ownerID *uint, name string) (*models.Category, error)
	ListVisible(ctx context.Context, ownerID uint, includeSystem bool, page Page) ([]models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uint) error
	DeleteByOwner(ctx context.Context, ownerID uint) error
}

type ExpenseRepository interface {
	Create(ctx context.Context, expense *models.Expense) error
	FindByID(ctx context.Context, id uint) (*models.Expense, error)
	// Stream yields the owner's expenses newest first. The sequence holds a
	// database cursor until iteration stops and can be ranged over once.
	Stream(ctx context.Context, ownerID uint, filter ExpenseFilter) iter.Seq2[models.Expense, error]
	CountByCategory(ctx context.Context, categoryID uint) (int64, error)
	Update(ctx context.Context, expense *models.Expense) error
	Delete(ctx context.Context, id uint) error
	DeleteByOwner(ctx context.Context, ownerID uint) error
}

type SharedExpenseRepository interface {
	Create(ctx context.Context, share *models.SharedExpense) error
	FindByID(ctx context.Context, id uint) (*models.ShareView, error)
	// ListForParticipant returns shares the user owns the expense of or
	// receives, ordered by id.
	ListForParticipant(ctx context.Context, userID uint, page Page) ([]models.ShareView, error)
	// ListOpenByExpense returns the expense's shares that are not rejected.
	ListOpenByExpense(ctx context.Context, expenseID uint) ([]models.SharedExpense, error)
	Update(ctx context.Context, share *models.SharedExpense) error
	DeleteByExpense(ctx context.Context, expenseID uint) error
	// DeleteByUser removes shares addressed to the user and shares on the
	// user's expenses.
	DeleteByUser(ctx context.Context, userID uint) error
}

// Store groups the repositories so a service can run several of them inside
// one transaction.
type Store interface {
	Users() UserRepository
	Categories() CategoryRepository
	Expenses() ExpenseRepository
	Shares() SharedExpenseRepository
	// Transaction runs fn against a Store bound to a single transaction. It
	// commits when fn returns nil and rolls back otherwise, including when
	// ctx is cancelled.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Users() UserRepository {
	return &userRepository{db: s.db}
}

func (s *GormStore) Categories() CategoryRepository {
	return &categoryRepository{db: s.db}
}

func (s *GormStore) Expenses() ExpenseRepository {
	return &expenseRepository{db: s.db}
}

func (s *GormStore) Shares() SharedExpenseRepository {
	return &sharedExpenseRepository{db: s.db}
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

// translate maps gorm's dialect-neutral errors onto error kinds. Anything
// else is returned untouched and ends up as an internal error.
func translate(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.NotFound(entity + " not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.Wrap(apperrors.KindDuplicate, entity+" already exists", err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperrors.Wrap(apperrors.KindReferentialConflict, entity+" is referenced by other records", err)
	default:
		return err
	}
}
