// Package events carries domain notifications out of the services after their
// transaction has committed.
package events

import (
	"context"
	"errors"
	"strings"
	"time"
)

const (
	TypeShareCreated       = "share.created"
	TypeShareStatusChanged = "share.status_changed"
	TypeShareSplitChanged  = "share.split_changed"

	TypeVerificationRequested  = "user.verification_requested"
	TypePasswordResetRequested = "user.password_reset_requested"
)

type Event struct {
	Type       string    `json:"type"`
	Recipients []uint    `json:"recipients"`
	Payload    any       `json:"payload"`
	OccurredAt time.Time `json:"occurred_at"`
}

// IsShareEvent reports whether the event concerns a shared expense and may be
// pushed to end-user connections.
func (e Event) IsShareEvent() bool {
	return strings.HasPrefix(e.Type, "share.")
}

type SharePayload struct {
	ShareID          uint   `json:"share_id"`
	ExpenseID        uint   `json:"expense_id"`
	OwnerID          uint   `json:"owner_id"`
	SharedWithUserID uint   `json:"shared_with_user_id"`
	SplitPercentage  string `json:"split_percentage"`
	Status           string `json:"status"`
	PreviousStatus   string `json:"previous_status,omitempty"`
	ActorID          uint   `json:"actor_id"`
}

// UserTokenPayload is consumed by whatever delivers verification and reset
// mails. It is never sent to websocket clients.
type UserTokenPayload struct {
	UserID    uint       `json:"user_id"`
	Email     string     `json:"email"`
	Token     string     `json:"token"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error {
	return nil
}

// Fanout delivers every event to each publisher and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
