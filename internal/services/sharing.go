package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/monocle-dev/expense-tracker/internal/apperrors"
	"github.com/monocle-dev/expense-tracker/internal/events"
	applog "github.com/monocle-dev/expense-tracker/internal/log"
	"github.com/monocle-dev/expense-tracker/internal/models"
	"github.com/monocle-dev/expense-tracker/internal/repository"
	"github.com/shopspring/decimal"
)

type ShareInput struct {
	SharedWithUserID uint
	SplitPercentage  decimal.Decimal
}

// SharingService runs the shared expense state machine:
//
//	PENDING  -> ACCEPTED | REJECTED  (recipient)
//	ACCEPTED -> SETTLED              (owner or recipient)
//
// REJECTED and SETTLED are terminal. Users who take no part in a share are
// told it does not exist.
type SharingService struct {
	store    repository.Store
	notifier notifier
	log      *applog.Logger
}

func NewSharingService(store repository.Store, publisher events.Publisher, log *applog.Logger) *SharingService {
	log = log.WithComponent(applog.ComponentSharing)
	return &SharingService{
		store:    store,
		notifier: newNotifier(publisher, log),
		log:      log,
	}
}

// Create shares one of the caller's expenses. The split of every share on an
// expense that has not been rejected adds up to at most 100, and a recipient
// holds at most one such share.
func (s *SharingService) Create(ctx context.Context, callerID, expenseID uint, in ShareInput) (*models.ShareView, error) {
	var view *models.ShareView

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		expense, err := findOwnedExpense(ctx, tx, expenseID, callerID)
		if err != nil {
			return err
		}

		if err := s.checkRecipient(ctx, tx, expense, in.SharedWithUserID); err != nil {
			return err
		}
		if err := validateSplit(in.SplitPercentage); err != nil {
			return err
		}

		open, err := tx.Shares().ListOpenByExpense(ctx, expense.ID)
		if err != nil {
			return err
		}
		for _, share := range open {
			if share.SharedWithUserID == in.SharedWithUserID {
				return apperrors.Duplicate("Expense is already shared with this user")
			}
		}
		if err := checkSplitTotal(open, 0, in.SplitPercentage); err != nil {
			return err
		}

		share := models.SharedExpense{
			ExpenseID:        expense.ID,
			SharedWithUserID: in.SharedWithUserID,
			SplitPercentage:  in.SplitPercentage,
			Status:           models.ShareStatusPending,
		}
		if err := tx.Shares().Create(ctx, &share); err != nil {
			return err
		}

		view = &models.ShareView{SharedExpense: share, OwnerID: expense.UserID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "Expense shared",
		applog.FieldUserID, callerID,
		applog.FieldExpenseID, expenseID,
		applog.FieldShareID, view.ID)
	s.notifier.publishShare(ctx, events.TypeShareCreated, view, callerID, "")
	return view, nil
}

func (s *SharingService) checkRecipient(ctx context.Context, tx repository.Store, expense *models.Expense, recipientID uint) error {
	if recipientID == expense.UserID {
		return apperrors.New(apperrors.KindInvalidRecipient, "Cannot share an expense with its owner")
	}

	recipient, err := tx.Users().FindByID(ctx, recipientID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.New(apperrors.KindInvalidRecipient, "Recipient does not exist")
	}
	if err != nil {
		return err
	}
	if !recipient.IsActive {
		return apperrors.New(apperrors.KindInvalidRecipient, "Recipient does not exist")
	}
	return nil
}

// checkSplitTotal fails if adding split to the open shares, other than
// skipID, would go past 100.
func checkSplitTotal(open []models.SharedExpense, skipID uint, split decimal.Decimal) error {
	total := split
	for _, share := range open {
		if share.ID != skipID {
			total = total.Add(share.SplitPercentage)
		}
	}
	if total.GreaterThan(maxSplit) {
		return apperrors.New(apperrors.KindInvalidSplit,
			fmt.Sprintf("Total split for this expense would be %s%%, above 100%%", total.StringFixed(twoPlaces)))
	}
	return nil
}

// findVisible loads a share the caller takes part in.
func findVisible(ctx context.Context, tx repository.Store, shareID, callerID uint) (*models.ShareView, error) {
	view, err := tx.Shares().FindByID(ctx, shareID)
	if err != nil {
		return nil, err
	}
	if !view.IsParticipant(callerID) {
		return nil, apperrors.NotFound("Shared expense not found")
	}
	return view, nil
}

// checkTransition decides whether callerID may move the share to next.
func checkTransition(view *models.ShareView, callerID uint, next models.ShareStatus) error {
	current := view.Status

	switch {
	case current.Terminal():
		return apperrors.InvalidTransition(fmt.Sprintf("Shared expense is %s and can no longer change", current))
	case current == models.ShareStatusPending && (next == models.ShareStatusAccepted || next == models.ShareStatusRejected):
		if callerID != view.SharedWithUserID {
			return apperrors.Forbidden("Only the recipient can accept or reject a shared expense")
		}
		return nil
	case current == models.ShareStatusAccepted && next == models.ShareStatusSettled:
		return nil
	default:
		return apperrors.InvalidTransition(fmt.Sprintf("Cannot change status from %s to %s", current, next))
	}
}

func (s *SharingService) UpdateStatus(ctx context.Context, callerID, shareID uint, next models.ShareStatus) (*models.ShareView, error) {
	next, ok := models.ParseShareStatus(string(next))
	if !ok {
		return nil, apperrors.Validation("Status must be one of PENDING, ACCEPTED, REJECTED, SETTLED")
	}

	var view *models.ShareView
	var previous models.ShareStatus

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		view, err = findVisible(ctx, tx, shareID, callerID)
		if err != nil {
			return err
		}
		if err := checkTransition(view, callerID, next); err != nil {
			return err
		}

		previous = view.Status
		view.Status = next
		return tx.Shares().Update(ctx, &view.SharedExpense)
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "Share status changed",
		applog.FieldUserID, callerID,
		applog.FieldShareID, shareID,
		"from", previous,
		"to", next)
	s.notifier.publishShare(ctx, events.TypeShareStatusChanged, view, callerID, previous)
	return view, nil
}

// UpdateSplit lets the owner renegotiate a share the recipient has not
// answered yet.
func (s *SharingService) UpdateSplit(ctx context.Context, callerID, shareID uint, split decimal.Decimal) (*models.ShareView, error) {
	var view *models.ShareView

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		view, err = findVisible(ctx, tx, shareID, callerID)
		if err != nil {
			return err
		}
		if callerID != view.OwnerID {
			return apperrors.Forbidden("Only the expense owner can change the split")
		}
		if view.Status != models.ShareStatusPending {
			return apperrors.InvalidTransition("Split can only change while the share is pending")
		}
		if err := validateSplit(split); err != nil {
			return err
		}

		open, err := tx.Shares().ListOpenByExpense(ctx, view.ExpenseID)
		if err != nil {
			return err
		}
		if err := checkSplitTotal(open, view.ID, split); err != nil {
			return err
		}

		view.SplitPercentage = split
		return tx.Shares().Update(ctx, &view.SharedExpense)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.publishShare(ctx, events.TypeShareSplitChanged, view, callerID, "")
	return view, nil
}

func (s *SharingService) Get(ctx context.Context, callerID, shareID uint) (*models.ShareView, error) {
	return findVisible(ctx, s.store, shareID, callerID)
}

// List returns the shares the caller owns the expense of or receives,
// ordered by id.
func (s *SharingService) List(ctx context.Context, callerID uint, page repository.Page) ([]models.ShareView, error) {
	return s.store.Shares().ListForParticipant(ctx, callerID, page)
}
