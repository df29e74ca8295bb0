package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/monocle-dev/expense-tracker/internal/apperrors"
	"github.com/monocle-dev/expense-tracker/internal/auth"
	"github.com/monocle-dev/expense-tracker/internal/events"
	applog "github.com/monocle-dev/expense-tracker/internal/log"
	"github.com/monocle-dev/expense-tracker/internal/models"
	"github.com/monocle-dev/expense-tracker/internal/repository"
)

const invalidCredentials = "Invalid email or password"

type RegisterInput struct {
	Email    string
	Username string
	Password string
}

// UpdateUserInput changes only the fields that are set.
type UpdateUserInput struct {
	Email    *string
	Username *string
}

type UserService struct {
	store    repository.Store
	hasher   auth.PasswordHasher
	notifier notifier
	log      *applog.Logger
	resetTTL time.Duration
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(store repository.Store, hasher auth.PasswordHasher, publisher events.Publisher, log *applog.Logger, resetTTL time.Duration) *UserService {
	log = log.WithComponent(applog.ComponentUser)
	return &UserService{
		store:    store,
		hasher:   hasher,
		notifier: newNotifier(publisher, log),
		log:      log,
		resetTTL: resetTTL,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	username, err := normalizeUsername(in.Username)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		IsActive:     true,
	}

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := ensureUnique(ctx, tx, 0, email, username); err != nil {
			return err
		}
		return tx.Users().Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "User registered", applog.FieldUserID, user.ID)
	return user, nil
}

// ensureUnique fails with a duplicate error naming the colliding field.
// selfID is excluded so a user can keep their own values.
func ensureUnique(ctx context.Context, tx repository.Store, selfID uint, email, username string) error {
	if email != "" {
		existing, err := tx.Users().FindByEmail(ctx, email)
		if err == nil && existing.ID != selfID {
			return apperrors.Duplicate("Email already registered")
		}
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
	}
	if username != "" {
		existing, err := tx.Users().FindByUsername(ctx, username)
		if err == nil && existing.ID != selfID {
			return apperrors.Duplicate("Username already taken")
		}
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
	}
	return nil
}

// Authenticate fails with the same error for an unknown email, a wrong
// password and an inactive account.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, apperrors.Unauthorized(invalidCredentials)
	}

	user, err := s.store.Users().FindByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrNotFound) {
		// Burn the same time a real comparison would.
		s.hasher.Compare(s.dummy(), password)
		return nil, apperrors.Unauthorized(invalidCredentials)
	}
	if err != nil {
		return nil, err
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			s.log.ErrorContext(ctx, "Password comparison failed", applog.FieldUserID, user.ID, applog.FieldError, err)
		}
		return nil, apperrors.Unauthorized(invalidCredentials)
	}

	if !user.IsActive {
		return nil, apperrors.Unauthorized(invalidCredentials)
	}

	return user, nil
}

func (s *UserService) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(uuid.NewString())
		if err != nil {
			s.log.Error("Failed to prepare dummy hash", applog.FieldError, err)
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.store.Users().FindByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, apperrors.NotFound("User not found")
	}
	return s.store.Users().FindByEmail(ctx, email)
}

func (s *UserService) Update(ctx context.Context, id uint, in UpdateUserInput) (*models.User, error) {
	var email, username string
	var err error

	if in.Email != nil {
		if email, err = normalizeEmail(*in.Email); err != nil {
			return nil, err
		}
	}
	if in.Username != nil {
		if username, err = normalizeUsername(*in.Username); err != nil {
			return nil, err
		}
	}
	if email == "" && username == "" {
		return nil, apperrors.Validation("No valid fields to update")
	}

	var user *models.User
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		user, err = tx.Users().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := ensureUnique(ctx, tx, user.ID, email, username); err != nil {
			return err
		}

		if email != "" && email != user.Email {
			user.Email = email
			user.IsVerified = false
			user.VerificationToken = nil
		}
		if username != "" {
			user.Username = username
		}

		return tx.Users().Update(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, id uint, current, next string) error {
	if err := validatePassword(next); err != nil {
		return err
	}

	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.hasher.Compare(user.PasswordHash, current); err != nil {
		return apperrors.Unauthorized("Current password is incorrect")
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.PasswordResetToken = nil
	user.PasswordResetExpires = nil

	return s.store.Users().Update(ctx, user)
}

// Delete removes the account and everything it owns once the password has
// been confirmed.
func (s *UserService) Delete(ctx context.Context, id uint, password string) error {
	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return apperrors.Unauthorized("Incorrect password")
	}

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Shares().DeleteByUser(ctx, id); err != nil {
			return err
		}
		if err := tx.Expenses().DeleteByOwner(ctx, id); err != nil {
			return err
		}
		if err := tx.Categories().DeleteByOwner(ctx, id); err != nil {
			return err
		}
		return tx.Users().Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}

	s.log.InfoContext(ctx, "User deleted", applog.FieldUserID, id)
	return nil
}

// Deactivate blocks the account from logging in without deleting its data.
func (s *UserService) Deactivate(ctx context.Context, email string) (*models.User, error) {
	user, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	user.IsActive = false
	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// RequestVerification issues a fresh verification token for the user.
func (s *UserService) RequestVerification(ctx context.Context, id uint) error {
	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return apperrors.Validation("Email is already verified")
	}

	token := uuid.NewString()
	user.VerificationToken = &token
	if err := s.store.Users().Update(ctx, user); err != nil {
		return err
	}

	s.notifier.publish(ctx, events.TypeVerificationRequested, []uint{user.ID}, events.UserTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Token:  token,
	})
	return nil
}

func (s *UserService) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, apperrors.Unauthorized("Invalid verification token")
	}

	user, err := s.store.Users().FindByVerificationToken(ctx, token)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.Unauthorized("Invalid verification token")
	}
	if err != nil {
		return nil, err
	}

	user.IsVerified = true
	user.VerificationToken = nil
	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// RequestPasswordReset never reports whether the email is known.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.GetByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !user.IsActive {
		return nil
	}

	token := uuid.NewString()
	expires := s.now().Add(s.resetTTL)
	user.PasswordResetToken = &token
	user.PasswordResetExpires = &expires
	if err := s.store.Users().Update(ctx, user); err != nil {
		return err
	}

	s.notifier.publish(ctx, events.TypePasswordResetRequested, []uint{user.ID}, events.UserTokenPayload{
		UserID:    user.ID,
		Email:     user.Email,
		Token:     token,
		ExpiresAt: &expires,
	})
	return nil
}

func (s *UserService) ResetPassword(ctx context.Context, token, password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}

	invalid := apperrors.Unauthorized("Invalid or expired reset token")
	if token == "" {
		return invalid
	}

	user, err := s.store.Users().FindByPasswordResetToken(ctx, token)
	if errors.Is(err, apperrors.ErrNotFound) {
		return invalid
	}
	if err != nil {
		return err
	}
	if user.PasswordResetExpires == nil || !s.now().Before(*user.PasswordResetExpires) {
		return invalid
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.PasswordResetToken = nil
	user.PasswordResetExpires = nil

	return s.store.Users().Update(ctx, user)
}

// PurgeExpiredResetTokens clears password reset tokens that can no longer be
// redeemed.
func (s *UserService) PurgeExpiredResetTokens(ctx context.Context) (int64, error) {
	return s.store.Users().ClearExpiredResetTokens(ctx, s.now())
}
