package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeExpenseSubmitted = "expense.submitted"
	EventTypeExpenseApproved  = "expense.approved"
	EventTypeExpenseRejected  = "expense.rejected"
)

// WorkflowEventTypes lists every event published by the expense workflow.
var WorkflowEventTypes = []string{
	EventTypeExpenseSubmitted,
	EventTypeExpenseApproved,
	EventTypeExpenseRejected,
}

// ExpenseTransitionedEvent is published after a workflow transition has been
// written to storage.
type ExpenseTransitionedEvent struct {
	BaseEvent
	ExpenseID   int64  `json:"expense_id"`
	UserID      int64  `json:"user_id"`
	StatusID    int64  `json:"status_id"`
	AmountMinor int64  `json:"amount_minor"`
	Currency    string `json:"currency"`
	ReviewerID  *int64 `json:"reviewer_id,omitempty"`
}

func NewExpenseTransitionedEvent(eventType string, expenseID, userID, statusID, amountMinor int64, currency string, reviewerID *int64, at time.Time) *ExpenseTransitionedEvent {
	data := map[string]interface{}{
		"expense_id":   expenseID,
		"user_id":      userID,
		"status_id":    statusID,
		"amount_minor": amountMinor,
		"currency":     currency,
	}
	if reviewerID != nil {
		data["reviewer_id"] = *reviewerID
	}

	return &ExpenseTransitionedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: at,
			Data:      data,
		},
		ExpenseID:   expenseID,
		UserID:      userID,
		StatusID:    statusID,
		AmountMinor: amountMinor,
		Currency:    currency,
		ReviewerID:  reviewerID,
	}
}

// LogWorkflowEvents subscribes a handler that records every workflow event
// in the structured log.
func LogWorkflowEvents(bus *EventBus, logger *slog.Logger) {
	bus.SubscribeAll(WorkflowEventTypes, func(ctx context.Context, event Event) error {
		logger.Info("workflow event",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"occurred_at", event.OccurredAt(),
			"payload", event.Payload())
		return nil
	})
}
