package services

import (
	"context"
	"time"

	"github.com/monocle-dev/expense-tracker/internal/events"
	applog "github.com/monocle-dev/expense-tracker/internal/log"
	"github.com/monocle-dev/expense-tracker/internal/models"
)

// notifier publishes events once a transaction has committed. Failures are
// logged and never returned: the write they describe has already happened.
type notifier struct {
	publisher events.Publisher
	log       *applog.Logger
	now       func() time.Time
}

func newNotifier(publisher events.Publisher, log *applog.Logger) notifier {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return notifier{publisher: publisher, log: log, now: time.Now}
}

func (n notifier) publish(ctx context.Context, eventType string, recipients []uint, payload any) {
	event := events.Event{
		Type:       eventType,
		Recipients: recipients,
		Payload:    payload,
		OccurredAt: n.now().UTC(),
	}

	if err := n.publisher.Publish(ctx, event); err != nil {
		n.log.ErrorContext(ctx, "Failed to publish event",
			applog.FieldEventType, eventType,
			applog.FieldError, err)
	}
}

func (n notifier) publishShare(ctx context.Context, eventType string, view *models.ShareView, actorID uint, previous models.ShareStatus) {
	n.publish(ctx, eventType, []uint{view.OwnerID, view.SharedWithUserID}, events.SharePayload{
		ShareID:          view.ID,
		ExpenseID:        view.ExpenseID,
		OwnerID:          view.OwnerID,
		SharedWithUserID: view.SharedWithUserID,
		SplitPercentage:  view.SplitPercentage.StringFixed(2),
		Status:           string(view.Status),
		PreviousStatus:   string(previous),
		ActorID:          actorID,
	})
}
