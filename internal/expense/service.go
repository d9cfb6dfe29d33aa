package expense

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/expense-approval/internal"
	"github.com/frahmantamala/expense-approval/internal/core/common/degraded"
	"github.com/frahmantamala/expense-approval/internal/core/common/validation"
	"github.com/frahmantamala/expense-approval/internal/core/events"
)

// RepositoryAPI is the data access contract for expenses.
//
// Update overwrites every mutable column of the row, so callers must hand
// in the complete expense. Update and Delete report ErrExpenseNotFound when
// no row matched.
//
// Transition reads the expense, hands it to apply and writes the result
// back inside a single transaction holding the row lock.
type RepositoryAPI interface {
	List(ctx context.Context, filter Filter) ([]*Expense, error)
	GetByID(ctx context.Context, id int64) (*Expense, error)
	Create(ctx context.Context, exp *Expense) error
	Update(ctx context.Context, exp *Expense) error
	Delete(ctx context.Context, id int64) error
	Transition(ctx context.Context, id int64, apply func(*Expense) error) (*Expense, error)
	ListStatuses(ctx context.Context) ([]*ExpenseStatus, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Options struct {
	StrictTransitions   bool
	SampleDataOnFailure bool
	OperationTimeout    time.Duration
}

// Service implements expense CRUD and the submit/approve/reject workflow.
type Service struct {
	repo      RepositoryAPI
	publisher EventPublisher
	machine   StateMachine
	opts      Options
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo RepositoryAPI, publisher EventPublisher, opts Options, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		machine:   StateMachine{Strict: opts.StrictTransitions},
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the time source used for audit stamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) ListExpenses(ctx context.Context, filter Filter) (degraded.Listing[*Expense], error) {
	ctx, cancel := internal.WithTimeout(ctx, s.opts.OperationTimeout)
	defer cancel()

	expenses, err := s.repo.List(ctx, filter)
	if err != nil {
		if !s.opts.SampleDataOnFailure {
			s.logger.Error("failed to list expenses", "error", err)
			return degraded.Listing[*Expense]{}, internal.NewStorageError("failed to list expenses", err)
		}
		s.logger.Warn("expense listing served from sample data", "error", err)
		return degraded.Fallback(SampleExpenses(s.now()), err), nil
	}

	return degraded.Live(expenses), nil
}

func (s *Service) GetExpense(ctx context.Context, id int64) (*Expense, error) {
	ctx, cancel := internal.WithTimeout(ctx, s.opts.OperationTimeout)
	defer cancel()

	exp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrExpenseNotFound) {
			return nil, ErrExpenseNotFound
		}
		s.logger.Error("failed to get expense", "error", err, "expense_id", id)
		return nil, internal.NewStorageError("failed to retrieve expense", err)
	}

	return exp, nil
}

// CreateExpense stores a new expense. A zero StatusID defaults to Draft; any
// other known status is accepted as supplied.
func (s *Service) CreateExpense(ctx context.Context, exp *Expense) (*Expense, error) {
	if exp.StatusID == 0 {
		exp.StatusID = StatusDraft
	}
	if verr := validateExpense(exp); verr != nil {
		s.logger.Warn("expense validation failed", "error", verr, "user_id", exp.UserID)
		return nil, verr
	}

	ctx, cancel := internal.WithTimeout(ctx, s.opts.OperationTimeout)
	defer cancel()

	exp.ID = 0
	if err := s.repo.Create(ctx, exp); err != nil {
		s.logger.Error("failed to create expense", "error", err, "user_id", exp.UserID)
		return nil, internal.NewStorageError("failed to create expense", err)
	}

	s.logger.Info("expense created",
		"expense_id", exp.ID,
		"user_id", exp.UserID,
		"amount_minor", exp.AmountMinor,
		"currency", exp.Currency,
		"status", exp.StatusID.String())

	return exp, nil
}

// UpdateExpense overwrites the stored expense identified by id with exp.
func (s *Service) UpdateExpense(ctx context.Context, id int64, exp *Expense) error {
	if exp.ID != id {
		s.logger.Warn("expense id mismatch", "path_id", id, "body_id", exp.ID)
		return ErrExpenseIDMismatch
	}
	if verr := validateExpense(exp); verr != nil {
		s.logger.Warn("expense validation failed", "error", verr, "expense_id", id)
		return verr
	}

	ctx, cancel := internal.WithTimeout(ctx, s.opts.OperationTimeout)
	defer cancel()

	if err := s.repo.Update(ctx, exp); err != nil {
		if errors.Is(err, ErrExpenseNotFound) {
			return ErrExpenseNotFound
		}
		s.logger.Error("failed to update expense", "error", err, "expense_id", id)
		return internal.NewStorageError("failed to update expense", err)
	}

	s.logger.Info("expense updated", "expense_id", id, "status", exp.StatusID.String())
	return nil
}

func (s *Service) DeleteExpense(ctx context.Context, id int64) error {
	ctx, cancel := internal.WithTimeout(ctx, s.opts.OperationTimeout)
	defer cancel()

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrExpenseNotFound) {
			return ErrExpenseNotFound
		}
		s.logger.Error("failed to delete expense", "error", err, "expense_id", id)
		return internal.NewStorageError("failed to delete expense", err)
	}

	s.logger.Info("expense deleted", "expense_id", id)
	return nil
}

func (s *Service) SubmitExpense(ctx context.Context, id int64) (*Expense, error) {
	return s.transition(ctx, id, ActionSubmit, 0)
}

func (s *Service) ApproveExpense(ctx context.Context, id, reviewerID int64) (*Expense, error) {
	return s.transition(ctx, id, ActionApprove, reviewerID)
}

func (s *Service) RejectExpense(ctx context.Context, id, reviewerID int64) (*Expense, error) {
	return s.transition(ctx, id, ActionReject, reviewerID)
}

func (s *Service) ListStatuses(ctx context.Context) (degraded.Listing[*ExpenseStatus], error) {
	ctx, cancel := internal.WithTimeout(ctx, s.opts.OperationTimeout)
	defer cancel()

	statuses, err := s.repo.ListStatuses(ctx)
	if err != nil {
		if !s.opts.SampleDataOnFailure {
			s.logger.Error("failed to list statuses", "error", err)
			return degraded.Listing[*ExpenseStatus]{}, internal.NewStorageError("failed to list statuses", err)
		}
		s.logger.Warn("status listing served from sample data", "error", err)
		return degraded.Fallback(SampleStatuses(), err), nil
	}

	return degraded.Live(statuses), nil
}

func (s *Service) transition(ctx context.Context, id int64, action Action, reviewerID int64) (*Expense, error) {
	if action != ActionSubmit && reviewerID <= 0 {
		return nil, internal.NewValidationFieldError("reviewerId", "reviewerId is required", internal.ErrCodeInvalidReference)
	}

	ctx, cancel := internal.WithTimeout(ctx, s.opts.OperationTimeout)
	defer cancel()

	now := s.now().UTC()
	updated, err := s.repo.Transition(ctx, id, func(e *Expense) error {
		if _, err := s.machine.Next(e.StatusID, action); err != nil {
			return err
		}
		switch action {
		case ActionSubmit:
			e.Submit(now)
		case ActionApprove:
			e.Approve(reviewerID, now)
		case ActionReject:
			e.Reject(reviewerID, now)
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrExpenseNotFound):
			s.logger.Warn("expense not found for transition", "expense_id", id, "action", action)
			return nil, ErrExpenseNotFound
		case errors.Is(err, ErrInvalidTransition):
			s.logger.Warn("illegal expense transition", "expense_id", id, "action", action, "error", err)
			return nil, err
		default:
			s.logger.Error("expense transition failed", "error", err, "expense_id", id, "action", action)
			return nil, internal.NewStorageError(fmt.Sprintf("failed to %s expense", action), err)
		}
	}

	s.logger.Info("expense transitioned",
		"expense_id", id,
		"action", action,
		"status", updated.StatusID.String(),
		"reviewer_id", reviewerID)

	s.publish(ctx, action, updated)
	return updated, nil
}

var actionEvents = map[Action]string{
	ActionSubmit:  events.EventTypeExpenseSubmitted,
	ActionApprove: events.EventTypeExpenseApproved,
	ActionReject:  events.EventTypeExpenseRejected,
}

func (s *Service) publish(ctx context.Context, action Action, e *Expense) {
	if s.publisher == nil {
		return
	}
	event := events.NewExpenseTransitionedEvent(actionEvents[action], e.ID, e.UserID, int64(e.StatusID), e.AmountMinor, e.Currency, e.ReviewedBy, s.now())
	if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Error("failed to publish workflow event", "error", err, "expense_id", e.ID, "event_type", event.EventType())
	}
}

func validateExpense(e *Expense) *internal.AppError {
	v := validation.NewValidator()
	v.Field("user_id", e.UserID).Required()
	v.Field("category_id", e.CategoryID).Required()
	v.Field("status_id", int64(e.StatusID)).
		OneOf([]int64{int64(StatusDraft), int64(StatusSubmitted), int64(StatusApproved), int64(StatusRejected)}, internal.ErrCodeInvalidStatus)
	v.Field("amount_minor", e.AmountMinor).
		MinInt(1, internal.ErrCodeInvalidAmount)
	v.Field("currency", e.Currency).
		Required().
		Matches(validation.CurrencyPattern, "currency must be a three letter ISO 4217 code", internal.ErrCodeInvalidCurrency)
	v.Field("expense_date", e.ExpenseDate).Required()
	v.Field("description", e.Description).MaxLength(500)
	return v.Validate()
}
