package services

import (
	"context"
	"errors"
	"iter"
	"sort"
	"time"

	"github.com/monocle-dev/expense-tracker/internal/apperrors"
	applog "github.com/monocle-dev/expense-tracker/internal/log"
	"github.com/monocle-dev/expense-tracker/internal/models"
	"github.com/monocle-dev/expense-tracker/internal/repository"
	"github.com/shopspring/decimal"
)

type ExpenseInput struct {
	Amount      decimal.Decimal
	Description string
	Date        time.Time
	CategoryID  uint
}

// ExpenseUpdate changes only the fields that are set.
type ExpenseUpdate struct {
	Amount      *decimal.Decimal
	Description *string
	Date        *time.Time
	CategoryID  *uint
}

// SummaryFilter restricts which expenses a summary covers.
type SummaryFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	CategoryID *uint
}

type CategoryTotal struct {
	CategoryID uint
	Name       string
	Total      decimal.Decimal
	Count      int
}

type MonthTotal struct {
	Month string // YYYY-MM
	Total decimal.Decimal
	Count int
}

type Summary struct {
	Total      decimal.Decimal
	Count      int
	Average    decimal.Decimal
	ByCategory []CategoryTotal
	ByMonth    []MonthTotal
}

type ExpenseService struct {
	store      repository.Store
	categories *CategoryService
	log        *applog.Logger
}

func NewExpenseService(store repository.Store, categories *CategoryService, log *applog.Logger) *ExpenseService {
	return &ExpenseService{
		store:      store,
		categories: categories,
		log:        log.WithComponent(applog.ComponentExpense),
	}
}

// usableCategory checks that the owner may file expenses under categoryID.
func (s *ExpenseService) usableCategory(ctx context.Context, tx repository.Store, categoryID, ownerID uint) error {
	notVisible := apperrors.New(apperrors.KindCategoryNotVisible, "Category does not exist or is not available")

	category, err := tx.Categories().FindByID(ctx, categoryID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return notVisible
	}
	if err != nil {
		return err
	}
	if !s.categories.visible(category, ownerID) {
		return notVisible
	}
	return nil
}

func (s *ExpenseService) Create(ctx context.Context, ownerID uint, in ExpenseInput) (*models.Expense, error) {
	if err := validateAmount(in.Amount); err != nil {
		return nil, err
	}
	description, err := normalizeExpenseDescription(in.Description)
	if err != nil {
		return nil, err
	}
	if in.Date.IsZero() {
		return nil, apperrors.Validation("Date is required")
	}

	expense := &models.Expense{
		Amount:      in.Amount,
		Description: description,
		Date:        calendarDate(in.Date),
		UserID:      ownerID,
		CategoryID:  in.CategoryID,
	}

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := s.usableCategory(ctx, tx, in.CategoryID, ownerID); err != nil {
			return err
		}
		return tx.Expenses().Create(ctx, expense)
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "Expense created",
		applog.FieldUserID, ownerID,
		applog.FieldExpenseID, expense.ID)
	return expense, nil
}

func validateFilter(filter repository.ExpenseFilter) error {
	if filter.Page.Skip < 0 {
		return apperrors.Validation("skip must not be negative")
	}
	if filter.Page.Limit < 0 || filter.Page.Limit > repository.MaxLimit {
		return apperrors.Validation("limit must be between 1 and 100")
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.After(*filter.EndDate) {
		return apperrors.Validation("start_date must not be after end_date")
	}
	if filter.MinAmount != nil && filter.MaxAmount != nil && filter.MinAmount.GreaterThan(*filter.MaxAmount) {
		return apperrors.Validation("min_amount must not exceed max_amount")
	}
	return nil
}

// List validates the filter and returns the owner's matching expenses,
// newest first. The sequence reads rows lazily and can be ranged over once.
func (s *ExpenseService) List(ctx context.Context, ownerID uint, filter repository.ExpenseFilter) (iter.Seq2[models.Expense, error], error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	filter.StartDate = dayPointer(filter.StartDate)
	filter.EndDate = dayPointer(filter.EndDate)

	return s.store.Expenses().Stream(ctx, ownerID, filter), nil
}

func dayPointer(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	day := time.Time(calendarDate(*t))
	return &day
}

// findOwnedExpense reports a foreign expense exactly like a missing one.
func findOwnedExpense(ctx context.Context, tx repository.Store, id, callerID uint) (*models.Expense, error) {
	expense, err := tx.Expenses().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if expense.UserID != callerID {
		return nil, apperrors.NotFound("Expense not found")
	}
	return expense, nil
}

func (s *ExpenseService) Get(ctx context.Context, id, callerID uint) (*models.Expense, error) {
	return findOwnedExpense(ctx, s.store, id, callerID)
}

func (s *ExpenseService) Update(ctx context.Context, id, callerID uint, in ExpenseUpdate) (*models.Expense, error) {
	var expense *models.Expense

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		expense, err = findOwnedExpense(ctx, tx, id, callerID)
		if err != nil {
			return err
		}

		if in.Amount != nil {
			if err := validateAmount(*in.Amount); err != nil {
				return err
			}
			expense.Amount = *in.Amount
		}
		if in.Description != nil {
			description, err := normalizeExpenseDescription(*in.Description)
			if err != nil {
				return err
			}
			expense.Description = description
		}
		if in.Date != nil {
			if in.Date.IsZero() {
				return apperrors.Validation("Date is required")
			}
			expense.Date = calendarDate(*in.Date)
		}
		if in.CategoryID != nil && *in.CategoryID != expense.CategoryID {
			if err := s.usableCategory(ctx, tx, *in.CategoryID, callerID); err != nil {
				return err
			}
			expense.CategoryID = *in.CategoryID
		}

		return tx.Expenses().Update(ctx, expense)
	})
	if err != nil {
		return nil, err
	}

	return expense, nil
}

// Delete removes the expense together with its shares.
func (s *ExpenseService) Delete(ctx context.Context, id, callerID uint) error {
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		expense, err := findOwnedExpense(ctx, tx, id, callerID)
		if err != nil {
			return err
		}
		if err := tx.Shares().DeleteByExpense(ctx, expense.ID); err != nil {
			return err
		}
		return tx.Expenses().Delete(ctx, expense.ID)
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "Expense deleted",
		applog.FieldUserID, callerID,
		applog.FieldExpenseID, id)
	return nil
}

// Summary totals the owner's expenses overall, per category and per month.
func (s *ExpenseService) Summary(ctx context.Context, ownerID uint, filter SummaryFilter) (*Summary, error) {
	base := repository.ExpenseFilter{
		StartDate:  filter.StartDate,
		EndDate:    filter.EndDate,
		CategoryID: filter.CategoryID,
	}
	if err := validateFilter(base); err != nil {
		return nil, err
	}

	summary := &Summary{Total: decimal.Zero, Average: decimal.Zero}
	byCategory := make(map[uint]*CategoryTotal)
	byMonth := make(map[string]*MonthTotal)

	page := repository.Page{Limit: repository.MaxLimit}
	for {
		base.Page = page
		expenses, err := s.List(ctx, ownerID, base)
		if err != nil {
			return nil, err
		}

		read := 0
		for expense, err := range expenses {
			if err != nil {
				return nil, err
			}
			read++

			summary.Total = summary.Total.Add(expense.Amount)
			summary.Count++

			ct, ok := byCategory[expense.CategoryID]
			if !ok {
				ct = &CategoryTotal{CategoryID: expense.CategoryID, Total: decimal.Zero}
				byCategory[expense.CategoryID] = ct
			}
			ct.Total = ct.Total.Add(expense.Amount)
			ct.Count++

			month := time.Time(expense.Date).Format("2006-01")
			mt, ok := byMonth[month]
			if !ok {
				mt = &MonthTotal{Month: month, Total: decimal.Zero}
				byMonth[month] = mt
			}
			mt.Total = mt.Total.Add(expense.Amount)
			mt.Count++
		}

		if read < page.Limit {
			break
		}
		page.Skip += page.Limit
	}

	if summary.Count > 0 {
		summary.Average = summary.Total.Div(decimal.NewFromInt(int64(summary.Count))).Round(twoPlaces)
	}

	// Names are resolved after the cursor above is closed.
	for id, ct := range byCategory {
		category, err := s.store.Categories().FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		ct.Name = category.Name
		summary.ByCategory = append(summary.ByCategory, *ct)
	}
	sort.Slice(summary.ByCategory, func(i, j int) bool {
		a, b := summary.ByCategory[i], summary.ByCategory[j]
		if !a.Total.Equal(b.Total) {
			return a.Total.GreaterThan(b.Total)
		}
		return a.Name < b.Name
	})

	for _, mt := range byMonth {
		summary.ByMonth = append(summary.ByMonth, *mt)
	}
	sort.Slice(summary.ByMonth, func(i, j int) bool {
		return summary.ByMonth[i].Month < summary.ByMonth[j].Month
	})

	return summary, nil
}
