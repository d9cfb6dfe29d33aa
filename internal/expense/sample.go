package expense

import (
	"time"

	"github.com/frahmantamala/expense-approval/internal/core/common/degraded"
)

func describe(text string) *string {
	s := text + " " + degraded.SampleTag
	return &s
}

// SampleExpenses is the placeholder set served when the expense listing
// cannot reach storage.
func SampleExpenses(now time.Time) []*Expense {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	reviewer := "Bob Manager"
	reviewerID := int64(2)
	submitted := now.AddDate(0, 0, -5)
	lunchSubmitted := now.AddDate(0, 0, -10)
	lunchReviewed := now.AddDate(0, 0, -9)
	return []*Expense{
		{
			ID:           1,
			UserID:       1,
			CategoryID:   1,
			StatusID:     StatusSubmitted,
			AmountMinor:  2540,
			Currency:     "GBP",
			ExpenseDate:  today.AddDate(0, 0, -5),
			Description:  describe("Taxi from airport"),
			SubmittedAt:  &submitted,
			CreatedAt:    now.AddDate(0, 0, -5),
			UserName:     "Alice Example",
			CategoryName: "Travel",
			StatusName:   StatusSubmitted.String(),
		},
		{
			ID:           2,
			UserID:       1,
			CategoryID:   2,
			StatusID:     StatusApproved,
			AmountMinor:  1425,
			Currency:     "GBP",
			ExpenseDate:  today.AddDate(0, 0, -10),
			Description:  describe("Client lunch"),
			SubmittedAt:  &lunchSubmitted,
			ReviewedBy:   &reviewerID,
			ReviewedAt:   &lunchReviewed,
			CreatedAt:    now.AddDate(0, 0, -10),
			UserName:     "Alice Example",
			CategoryName: "Meals",
			StatusName:   StatusApproved.String(),
			ReviewerName: &reviewer,
		},
	}
}

// SampleStatuses mirrors the seeded status table.
func SampleStatuses() []*ExpenseStatus {
	statuses := make([]*ExpenseStatus, 0, 4)
	for _, s := range AllStatuses() {
		statuses = append(statuses, &ExpenseStatus{StatusID: int64(s), StatusName: s.String()})
	}
	return statuses
}
