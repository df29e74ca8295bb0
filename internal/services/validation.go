package services

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/monocle-dev/expense-tracker/internal/apperrors"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt ignores anything longer
)

var (
	maxAmount = decimal.RequireFromString("99999999.99")
	maxSplit  = decimal.NewFromInt(100)
	twoPlaces = int32(2)
)

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(email) > 255 {
		return "", apperrors.Validation("Email must be between 1 and 255 characters")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", apperrors.Validation("Email is not a valid address")
	}
	return email, nil
}

func normalizeUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if n := len([]rune(username)); n < 3 || n > 50 {
		return "", apperrors.Validation("Username must be between 3 and 50 characters")
	}
	return username, nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperrors.Validation(fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}
	if len(password) > maxPasswordLength {
		return apperrors.Validation(fmt.Sprintf("Password must be at most %d bytes", maxPasswordLength))
	}
	return nil
}

func normalizeCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if n := len([]rune(name)); n < 3 || n > 50 {
		return "", apperrors.Validation("Category name must be between 3 and 50 characters")
	}
	return name, nil
}

// normalizeDescription trims an optional description; blank becomes nil.
func normalizeDescription(description *string) (*string, error) {
	if description == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*description)
	if trimmed == "" {
		return nil, nil
	}
	if len([]rune(trimmed)) > 255 {
		return nil, apperrors.Validation("Description must be at most 255 characters")
	}
	return &trimmed, nil
}

func normalizeExpenseDescription(description string) (string, error) {
	description = strings.TrimSpace(description)
	if n := len([]rune(description)); n < 1 || n > 255 {
		return "", apperrors.Validation("Description must be between 1 and 255 characters")
	}
	return description, nil
}

// hasAtMostTwoPlaces is false for values such as 10.005 that would need
// rounding to be stored.
func hasAtMostTwoPlaces(d decimal.Decimal) bool {
	return d.Equal(d.Round(twoPlaces))
}

func validateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return apperrors.Validation("Amount must not be negative")
	}
	if !hasAtMostTwoPlaces(amount) {
		return apperrors.Validation("Amount must have at most 2 decimal places")
	}
	if amount.GreaterThan(maxAmount) {
		return apperrors.Validation("Amount must not exceed " + maxAmount.StringFixed(twoPlaces))
	}
	return nil
}

func validateSplit(split decimal.Decimal) error {
	if split.IsNegative() || split.GreaterThan(maxSplit) {
		return apperrors.New(apperrors.KindInvalidSplit, "Split percentage must be between 0 and 100")
	}
	if !hasAtMostTwoPlaces(split) {
		return apperrors.New(apperrors.KindInvalidSplit, "Split percentage must have at most 2 decimal places")
	}
	return nil
}

// calendarDate drops the time of day and location.
func calendarDate(t time.Time) datatypes.Date {
	y, m, d := t.Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}
