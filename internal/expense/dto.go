package expense

import (
	"strings"
	"time"

	"github.com/frahmantamala/expense-approval/internal"
)

var expenseDateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"}

// ExpenseRequest is the body of create and update calls. Display fields are
// not accepted; they are always derived on read.
type ExpenseRequest struct {
	ExpenseID   int64      `json:"expenseId"`
	UserID      int64      `json:"userId"`
	CategoryID  int64      `json:"categoryId"`
	StatusID    int64      `json:"statusId"`
	AmountMinor int64      `json:"amountMinor"`
	Currency    string     `json:"currency"`
	ExpenseDate string     `json:"expenseDate"`
	Description *string    `json:"description"`
	ReceiptFile *string    `json:"receiptFile"`
	SubmittedAt *time.Time `json:"submittedAt"`
	ReviewedBy  *int64     `json:"reviewedBy"`
	ReviewedAt  *time.Time `json:"reviewedAt"`
}

// ToExpense converts the request into a domain expense. ExpenseDate accepts
// a plain date or an RFC 3339 timestamp; an empty value is left zero so that
// validation reports it as missing.
func (r *ExpenseRequest) ToExpense() (*Expense, error) {
	e := &Expense{
		ID:          r.ExpenseID,
		UserID:      r.UserID,
		CategoryID:  r.CategoryID,
		StatusID:    Status(r.StatusID),
		AmountMinor: r.AmountMinor,
		Currency:    r.Currency,
		Description: r.Description,
		ReceiptFile: r.ReceiptFile,
		SubmittedAt: r.SubmittedAt,
		ReviewedBy:  r.ReviewedBy,
		ReviewedAt:  r.ReviewedAt,
	}

	raw := strings.TrimSpace(r.ExpenseDate)
	if raw == "" {
		return e, nil
	}
	for _, layout := range expenseDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			e.ExpenseDate = t
			return e, nil
		}
	}
	return nil, internal.NewValidationFieldError("expenseDate", "expenseDate must be a date (YYYY-MM-DD)", internal.ErrCodeInvalidDate)
}

// MessageResponse is the body returned by the workflow endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}

// OverviewResponse backs the dashboard read. Error is only set when the
// listing was served from placeholder data.
type OverviewResponse struct {
	Expenses []*Expense `json:"expenses"`
	Degraded bool       `json:"degraded"`
	Error    string     `json:"error,omitempty"`
}
