package expense

import (
	"time"

	"github.com/frahmantamala/expense-approval/internal"
	expenseDatamodel "github.com/frahmantamala/expense-approval/internal/core/datamodel/expense"
)

// Expense is a spending request. AmountMinor is held in the smallest unit of
// Currency; amounts are never converted to floating point.
//
// UserName, CategoryName, StatusName and ReviewerName are filled on read and
// are never written back.
type Expense struct {
	ID          int64      `json:"expenseId"`
	UserID      int64      `json:"userId"`
	CategoryID  int64      `json:"categoryId"`
	StatusID    Status     `json:"statusId"`
	AmountMinor int64      `json:"amountMinor"`
	Currency    string     `json:"currency"`
	ExpenseDate time.Time  `json:"expenseDate"`
	Description *string    `json:"description"`
	ReceiptFile *string    `json:"receiptFile"`
	SubmittedAt *time.Time `json:"submittedAt"`
	ReviewedBy  *int64     `json:"reviewedBy"`
	ReviewedAt  *time.Time `json:"reviewedAt"`
	CreatedAt   time.Time  `json:"createdAt"`

	UserName     string  `json:"userName,omitempty"`
	CategoryName string  `json:"categoryName,omitempty"`
	StatusName   string  `json:"statusName,omitempty"`
	ReviewerName *string `json:"reviewerName"`
}

// ExpenseStatus is a row of the fixed status reference table.
type ExpenseStatus struct {
	StatusID   int64  `json:"statusId"`
	StatusName string `json:"statusName"`
}

// Filter narrows ListExpenses. Nil fields match every value.
type Filter struct {
	UserID   *int64
	StatusID *int64
}

var (
	ErrExpenseNotFound   = internal.ErrExpenseNotFound
	ErrExpenseIDMismatch = internal.ErrExpenseIDMismatch
	ErrInvalidTransition = internal.ErrInvalidTransition
)

// Submit moves the expense to Submitted and stamps SubmittedAt.
func (e *Expense) Submit(now time.Time) {
	e.StatusID = StatusSubmitted
	e.SubmittedAt = &now
}

// Approve moves the expense to Approved and records the reviewer.
func (e *Expense) Approve(reviewerID int64, now time.Time) {
	e.review(StatusApproved, reviewerID, now)
}

// Reject moves the expense to Rejected and records the reviewer.
func (e *Expense) Reject(reviewerID int64, now time.Time) {
	e.review(StatusRejected, reviewerID, now)
}

func (e *Expense) review(status Status, reviewerID int64, now time.Time) {
	e.StatusID = status
	e.ReviewedBy = &reviewerID
	e.ReviewedAt = &now
}

func ToDataModel(e *Expense) *expenseDatamodel.Expense {
	return &expenseDatamodel.Expense{
		ID:          e.ID,
		UserID:      e.UserID,
		CategoryID:  e.CategoryID,
		StatusID:    int64(e.StatusID),
		AmountMinor: e.AmountMinor,
		Currency:    e.Currency,
		ExpenseDate: e.ExpenseDate,
		Description: e.Description,
		ReceiptFile: e.ReceiptFile,
		SubmittedAt: e.SubmittedAt,
		ReviewedBy:  e.ReviewedBy,
		ReviewedAt:  e.ReviewedAt,
		CreatedAt:   e.CreatedAt,
	}
}

func FromDataModel(e *expenseDatamodel.Expense) *Expense {
	return &Expense{
		ID:          e.ID,
		UserID:      e.UserID,
		CategoryID:  e.CategoryID,
		StatusID:    Status(e.StatusID),
		AmountMinor: e.AmountMinor,
		Currency:    e.Currency,
		ExpenseDate: e.ExpenseDate,
		Description: e.Description,
		ReceiptFile: e.ReceiptFile,
		SubmittedAt: e.SubmittedAt,
		ReviewedBy:  e.ReviewedBy,
		ReviewedAt:  e.ReviewedAt,
		CreatedAt:   e.CreatedAt,
	}
}

func FromView(v *expenseDatamodel.ExpenseView) *Expense {
	e := FromDataModel(&v.Expense)
	e.UserName = v.UserName
	e.CategoryName = v.CategoryName
	e.StatusName = v.StatusName
	e.ReviewerName = v.ReviewerName
	return e
}

func FromViewSlice(views []*expenseDatamodel.ExpenseView) []*Expense {
	result := make([]*Expense, len(views))
	for i, v := range views {
		result[i] = FromView(v)
	}
	return result
}
