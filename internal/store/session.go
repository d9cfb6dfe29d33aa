// Package store exposes the expense store through the sentinel and
// last-error contract: writes report success as a bool (or -1 for a failed
// create) and the most recent fault is kept for LastError.
//
// A Session belongs to a single request or CLI invocation.
package store

import (
	"context"
	"sync"

	"github.com/frahmantamala/expense-approval/internal/category"
	"github.com/frahmantamala/expense-approval/internal/core/common/degraded"
	"github.com/frahmantamala/expense-approval/internal/expense"
	"github.com/frahmantamala/expense-approval/internal/user"
)

// FailedID is returned by CreateExpense when nothing was stored.
const FailedID int64 = -1

type ExpenseService interface {
	ListExpenses(ctx context.Context, filter expense.Filter) (degraded.Listing[*expense.Expense], error)
	GetExpense(ctx context.Context, id int64) (*expense.Expense, error)
	CreateExpense(ctx context.Context, exp *expense.Expense) (*expense.Expense, error)
	UpdateExpense(ctx context.Context, id int64, exp *expense.Expense) error
	DeleteExpense(ctx context.Context, id int64) error
	SubmitExpense(ctx context.Context, id int64) (*expense.Expense, error)
	ApproveExpense(ctx context.Context, id, reviewerID int64) (*expense.Expense, error)
	RejectExpense(ctx context.Context, id, reviewerID int64) (*expense.Expense, error)
	ListStatuses(ctx context.Context) (degraded.Listing[*expense.ExpenseStatus], error)
}

type CategoryService interface {
	ListCategories(ctx context.Context) (degraded.Listing[*category.Category], error)
}

type UserService interface {
	ListUsers(ctx context.Context) (degraded.Listing[*user.User], error)
}

type Session struct {
	expenses   ExpenseService
	categories CategoryService
	users      UserService

	mu       sync.Mutex
	lastErr  error
	degraded bool
}

func NewSession(expenses ExpenseService, categories CategoryService, users UserService) *Session {
	return &Session{
		expenses:   expenses,
		categories: categories,
		users:      users,
	}
}

// LastError returns the fault recorded by the most recent failed or
// degraded call, or nil.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Degraded reports whether the most recent call was a listing answered with
// placeholder data. A listing that failed outright is not degraded.
func (s *Session) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

func (s *Session) record(err error) {
	s.recordListing(err, false)
}

func (s *Session) recordListing(err error, degraded bool) {
	s.mu.Lock()
	s.lastErr = err
	s.degraded = degraded
	s.mu.Unlock()
}

// ListExpenses returns placeholder data when storage is down and fallback
// is enabled, or an empty list when it is not. The cause is recorded either
// way; Degraded tells the two apart.
func (s *Session) ListExpenses(ctx context.Context, userID, statusID *int64) []*expense.Expense {
	listing, err := s.expenses.ListExpenses(ctx, expense.Filter{UserID: userID, StatusID: statusID})
	return collect(s, listing, err)
}

// GetExpense returns nil when the expense is missing or unreadable.
func (s *Session) GetExpense(ctx context.Context, id int64) *expense.Expense {
	e, err := s.expenses.GetExpense(ctx, id)
	s.record(err)
	if err != nil {
		return nil
	}
	return e
}

func (s *Session) CreateExpense(ctx context.Context, e *expense.Expense) int64 {
	created, err := s.expenses.CreateExpense(ctx, e)
	s.record(err)
	if err != nil {
		return FailedID
	}
	return created.ID
}

func (s *Session) UpdateExpense(ctx context.Context, e *expense.Expense) bool {
	return s.ok(s.expenses.UpdateExpense(ctx, e.ID, e))
}

func (s *Session) DeleteExpense(ctx context.Context, id int64) bool {
	return s.ok(s.expenses.DeleteExpense(ctx, id))
}

func (s *Session) Submit(ctx context.Context, id int64) bool {
	_, err := s.expenses.SubmitExpense(ctx, id)
	return s.ok(err)
}

func (s *Session) Approve(ctx context.Context, id, reviewerID int64) bool {
	_, err := s.expenses.ApproveExpense(ctx, id, reviewerID)
	return s.ok(err)
}

func (s *Session) Reject(ctx context.Context, id, reviewerID int64) bool {
	_, err := s.expenses.RejectExpense(ctx, id, reviewerID)
	return s.ok(err)
}

func (s *Session) ListStatuses(ctx context.Context) []*expense.ExpenseStatus {
	listing, err := s.expenses.ListStatuses(ctx)
	return collect(s, listing, err)
}

func (s *Session) ListCategories(ctx context.Context) []*category.Category {
	listing, err := s.categories.ListCategories(ctx)
	return collect(s, listing, err)
}

func (s *Session) ListUsers(ctx context.Context) []*user.User {
	listing, err := s.users.ListUsers(ctx)
	return collect(s, listing, err)
}

func (s *Session) ok(err error) bool {
	s.record(err)
	return err == nil
}

func collect[T any](s *Session, listing degraded.Listing[T], err error) []T {
	if err != nil {
		s.record(err)
		return []T{}
	}
	s.recordListing(listing.Cause, listing.Degraded)
	return listing.Items
}
