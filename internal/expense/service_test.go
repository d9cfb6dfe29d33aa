package expense_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/expense-approval/internal"
	"github.com/frahmantamala/expense-approval/internal/core/common/degraded"
	"github.com/frahmantamala/expense-approval/internal/core/events"
	"github.com/frahmantamala/expense-approval/internal/expense"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Service", func() {
	var (
		repo      *mockRepository
		publisher *recordingPublisher
		service   *expense.Service
		ctx       context.Context
		now       time.Time
		opts      expense.Options
	)

	build := func() {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		service = expense.NewService(repo, publisher, opts, logger).
			WithClock(func() time.Time { return now })
	}

	BeforeEach(func() {
		repo = newMockRepository()
		publisher = &recordingPublisher{}
		ctx = context.Background()
		now = time.Now().UTC().Truncate(time.Second)
		opts = expense.Options{StrictTransitions: true, SampleDataOnFailure: true, OperationTimeout: time.Second}
		build()
	})

	Describe("ListExpenses", func() {
		It("should return live data with no filter", func() {
			repo.seed(newDraft(1, 100))
			repo.seed(newDraft(2, 200))

			listing, err := service.ListExpenses(ctx, expense.Filter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(listing.Degraded).To(BeFalse())
			Expect(listing.Items).To(HaveLen(2))
		})

		It("should only return submitted expenses when filtering by status 2", func() {
			repo.seed(newDraft(1, 100))
			submitted := newDraft(1, 200)
			submitted.StatusID = expense.StatusSubmitted
			repo.seed(submitted)

			status := int64(expense.StatusSubmitted)
			listing, err := service.ListExpenses(ctx, expense.Filter{StatusID: &status})
			Expect(err).NotTo(HaveOccurred())
			Expect(listing.Items).To(HaveLen(1))
			Expect(listing.Items[0].StatusID).To(Equal(expense.StatusSubmitted))
		})

		It("should return an empty, non-nil list when nothing matches", func() {
			listing, err := service.ListExpenses(ctx, expense.Filter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(listing.Items).NotTo(BeNil())
			Expect(listing.Items).To(BeEmpty())
		})

		It("should fall back to tagged sample data when storage fails", func() {
			repo.failWith = errConnectionRefused

			listing, err := service.ListExpenses(ctx, expense.Filter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(listing.Degraded).To(BeTrue())
			Expect(listing.CauseMessage()).To(ContainSubstring("connection refused"))
			Expect(listing.Items).To(HaveLen(2))
			for _, e := range listing.Items {
				Expect(*e.Description).To(HaveSuffix(degraded.SampleTag))
			}
		})

		It("should surface the fault when sample data is disabled", func() {
			opts.SampleDataOnFailure = false
			build()
			repo.failWith = errConnectionRefused

			_, err := service.ListExpenses(ctx, expense.Filter{})
			Expect(err).To(MatchError(internal.ErrStorageFailure))
		})
	})

	Describe("GetExpense", func() {
		It("should return not found for unknown ids", func() {
			_, err := service.GetExpense(ctx, 99)
			Expect(err).To(MatchError(expense.ErrExpenseNotFound))
		})

		It("should never serve sample data for single reads", func() {
			repo.failWith = errConnectionRefused
			_, err := service.GetExpense(ctx, 1)
			Expect(err).To(MatchError(internal.ErrStorageFailure))
			Expect(err.Error()).To(ContainSubstring("connection refused"))
		})
	})

	Describe("CreateExpense", func() {
		It("should store the expense and assign an id", func() {
			created, err := service.CreateExpense(ctx, newDraft(1, 2540))
			Expect(err).NotTo(HaveOccurred())
			Expect(created.ID).To(BeNumerically(">", 0))

			stored, err := service.GetExpense(ctx, created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.AmountMinor).To(Equal(int64(2540)))
			Expect(stored.Currency).To(Equal("GBP"))
			Expect(*stored.Description).To(Equal("Taxi from airport"))
		})

		It("should default a missing status to Draft", func() {
			e := newDraft(1, 100)
			e.StatusID = 0
			created, err := service.CreateExpense(ctx, e)
			Expect(err).NotTo(HaveOccurred())
			Expect(created.StatusID).To(Equal(expense.StatusDraft))
		})

		It("should accept an explicit non-draft status", func() {
			e := newDraft(1, 100)
			e.StatusID = expense.StatusApproved
			created, err := service.CreateExpense(ctx, e)
			Expect(err).NotTo(HaveOccurred())
			Expect(created.StatusID).To(Equal(expense.StatusApproved))
		})

		DescribeTable("should reject invalid payloads before storage",
			func(mutate func(*expense.Expense), field string) {
				e := newDraft(1, 100)
				mutate(e)
				_, err := service.CreateExpense(ctx, e)
				Expect(err).To(HaveOccurred())

				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
				details := appErr.Details.(internal.ValidationErrors)
				Expect(details.Errors[0].Field).To(Equal(field))

				listing, _ := service.ListExpenses(ctx, expense.Filter{})
				Expect(listing.Items).To(BeEmpty())
			},
			Entry("zero amount", func(e *expense.Expense) { e.AmountMinor = 0 }, "amount_minor"),
			Entry("negative amount", func(e *expense.Expense) { e.AmountMinor = -5 }, "amount_minor"),
			Entry("lowercase currency", func(e *expense.Expense) { e.Currency = "gbp" }, "currency"),
			Entry("missing currency", func(e *expense.Expense) { e.Currency = "" }, "currency"),
			Entry("missing date", func(e *expense.Expense) { e.ExpenseDate = time.Time{} }, "expense_date"),
			Entry("unknown status", func(e *expense.Expense) { e.StatusID = 9 }, "status_id"),
			Entry("missing user", func(e *expense.Expense) { e.UserID = 0 }, "user_id"),
			Entry("long description", func(e *expense.Expense) { e.Description = strPtr(strings.Repeat("x", 501)) }, "description"),
		)

		It("should wrap storage faults", func() {
			repo.failWith = errConnectionRefused
			_, err := service.CreateExpense(ctx, newDraft(1, 100))
			Expect(err).To(MatchError(internal.ErrStorageFailure))
		})
	})

	Describe("UpdateExpense", func() {
		It("should reject mismatched ids before reaching storage", func() {
			stored := repo.seed(newDraft(1, 100))
			changed := *stored
			changed.ID = stored.ID + 1
			repo.failWith = errConnectionRefused

			err := service.UpdateExpense(ctx, stored.ID, &changed)
			Expect(err).To(MatchError(expense.ErrExpenseIDMismatch))
			Expect(repo.lastWrite).To(BeNil())
		})

		It("should overwrite every mutable field", func() {
			stored := repo.seed(newDraft(1, 100))
			changed := *stored
			changed.AmountMinor = 999
			changed.Description = nil

			Expect(service.UpdateExpense(ctx, stored.ID, &changed)).To(Succeed())
			got, err := service.GetExpense(ctx, stored.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.AmountMinor).To(Equal(int64(999)))
			Expect(got.Description).To(BeNil())
		})

		It("should report missing expenses", func() {
			e := newDraft(1, 100)
			e.ID = 42
			Expect(service.UpdateExpense(ctx, 42, e)).To(MatchError(expense.ErrExpenseNotFound))
		})
	})

	Describe("DeleteExpense", func() {
		It("should remove the expense", func() {
			stored := repo.seed(newDraft(1, 100))
			Expect(service.DeleteExpense(ctx, stored.ID)).To(Succeed())
			_, err := service.GetExpense(ctx, stored.ID)
			Expect(err).To(MatchError(expense.ErrExpenseNotFound))
		})

		It("should report missing expenses", func() {
			Expect(service.DeleteExpense(ctx, 7)).To(MatchError(expense.ErrExpenseNotFound))
		})
	})

	Describe("workflow", func() {
		It("should run the submit then approve scenario", func() {
			created, err := service.CreateExpense(ctx, newDraft(1, 2540))
			Expect(err).NotTo(HaveOccurred())

			submitted, err := service.SubmitExpense(ctx, created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(submitted.StatusID).To(Equal(expense.StatusSubmitted))
			Expect(*submitted.SubmittedAt).To(BeTemporally("==", now))
			Expect(submitted.SubmittedAt.Before(submitted.CreatedAt)).To(BeFalse())

			approved, err := service.ApproveExpense(ctx, created.ID, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(approved.StatusID).To(Equal(expense.StatusApproved))
			Expect(*approved.ReviewedBy).To(Equal(int64(2)))
			Expect(approved.ReviewedAt).NotTo(BeNil())

			published := publisher.published()
			Expect(published).To(HaveLen(2))
			Expect(published[0].EventType()).To(Equal(events.EventTypeExpenseSubmitted))
			Expect(published[1].EventType()).To(Equal(events.EventTypeExpenseApproved))
		})

		It("should reject a submitted expense", func() {
			e := newDraft(1, 100)
			e.StatusID = expense.StatusSubmitted
			stored := repo.seed(e)

			rejected, err := service.RejectExpense(ctx, stored.ID, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(rejected.StatusID).To(Equal(expense.StatusRejected))
			Expect(*rejected.ReviewedBy).To(Equal(int64(2)))
		})

		It("should return not found for unknown ids", func() {
			_, err := service.SubmitExpense(ctx, 404)
			Expect(err).To(MatchError(expense.ErrExpenseNotFound))
			_, err = service.ApproveExpense(ctx, 404, 2)
			Expect(err).To(MatchError(expense.ErrExpenseNotFound))
			_, err = service.RejectExpense(ctx, 404, 2)
			Expect(err).To(MatchError(expense.ErrExpenseNotFound))
			Expect(publisher.published()).To(BeEmpty())
		})

		It("should require a reviewer for approve and reject", func() {
			e := newDraft(1, 100)
			e.StatusID = expense.StatusSubmitted
			stored := repo.seed(e)

			_, err := service.ApproveExpense(ctx, stored.ID, 0)
			Expect(err).To(HaveOccurred())
			appErr, _ := internal.IsAppError(err)
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
			Expect(repo.lastWrite).To(BeNil())
		})

		It("should refuse to approve a rejected expense in strict mode", func() {
			e := newDraft(1, 100)
			e.StatusID = expense.StatusRejected
			stored := repo.seed(e)

			_, err := service.ApproveExpense(ctx, stored.ID, 2)
			Expect(err).To(MatchError(expense.ErrInvalidTransition))

			got, _ := service.GetExpense(ctx, stored.ID)
			Expect(got.StatusID).To(Equal(expense.StatusRejected))
			Expect(publisher.published()).To(BeEmpty())
		})

		It("should apply every transition in permissive mode", func() {
			opts.StrictTransitions = false
			build()
			e := newDraft(1, 100)
			e.StatusID = expense.StatusRejected
			stored := repo.seed(e)

			approved, err := service.ApproveExpense(ctx, stored.ID, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(approved.StatusID).To(Equal(expense.StatusApproved))
		})

		It("should restamp submitted_at on a repeated submit in permissive mode", func() {
			opts.StrictTransitions = false
			build()
			stored := repo.seed(newDraft(1, 100))

			first, err := service.SubmitExpense(ctx, stored.ID)
			Expect(err).NotTo(HaveOccurred())
			firstStamp := *first.SubmittedAt

			now = now.Add(time.Minute)
			second, err := service.SubmitExpense(ctx, stored.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(second.StatusID).To(Equal(expense.StatusSubmitted))
			Expect(second.SubmittedAt.After(firstStamp)).To(BeTrue())
		})

		It("should surface storage faults without new meaning", func() {
			stored := repo.seed(newDraft(1, 100))
			repo.failWith = errConnectionRefused

			_, err := service.SubmitExpense(ctx, stored.ID)
			Expect(err).To(MatchError(internal.ErrStorageFailure))
			Expect(err.Error()).To(ContainSubstring("connection refused"))
		})

		It("should keep the transition when publishing fails", func() {
			publisher.failWith = errConnectionRefused
			stored := repo.seed(newDraft(1, 100))

			submitted, err := service.SubmitExpense(ctx, stored.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(submitted.StatusID).To(Equal(expense.StatusSubmitted))
		})
	})

	Describe("ListStatuses", func() {
		It("should list the four statuses", func() {
			listing, err := service.ListStatuses(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(listing.Items).To(HaveLen(4))
		})

		It("should fall back to the fixed status set", func() {
			repo.failWith = errConnectionRefused
			listing, err := service.ListStatuses(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(listing.Degraded).To(BeTrue())
			Expect(listing.Items).To(HaveLen(4))
			Expect(listing.Items[3].StatusName).To(Equal("Rejected"))
		})
	})
})
