package expense_test

import (
	"github.com/frahmantamala/expense-approval/internal/expense"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("StateMachine", func() {
	strict := expense.StateMachine{Strict: true}
	permissive := expense.StateMachine{}

	DescribeTable("strict transitions",
		func(from expense.Status, action expense.Action, want expense.Status, legal bool) {
			got, err := strict.Next(from, action)
			if !legal {
				Expect(err).To(MatchError(expense.ErrInvalidTransition))
				Expect(got).To(Equal(from))
				return
			}
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("submit a draft", expense.StatusDraft, expense.ActionSubmit, expense.StatusSubmitted, true),
		Entry("approve a submitted expense", expense.StatusSubmitted, expense.ActionApprove, expense.StatusApproved, true),
		Entry("reject a submitted expense", expense.StatusSubmitted, expense.ActionReject, expense.StatusRejected, true),
		Entry("resubmit a submitted expense", expense.StatusSubmitted, expense.ActionSubmit, expense.StatusSubmitted, false),
		Entry("approve a draft", expense.StatusDraft, expense.ActionApprove, expense.StatusApproved, false),
		Entry("approve a rejected expense", expense.StatusRejected, expense.ActionApprove, expense.StatusApproved, false),
		Entry("reject an approved expense", expense.StatusApproved, expense.ActionReject, expense.StatusRejected, false),
		Entry("submit an approved expense", expense.StatusApproved, expense.ActionSubmit, expense.StatusSubmitted, false),
	)

	It("should apply every action in permissive mode", func() {
		for _, from := range expense.AllStatuses() {
			got, err := permissive.Next(from, expense.ActionApprove)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(expense.StatusApproved))
		}
	})

	It("should reject unknown actions", func() {
		_, err := permissive.Next(expense.StatusDraft, expense.Action("archive"))
		Expect(err).To(HaveOccurred())
	})

	It("should name statuses", func() {
		Expect(expense.StatusSubmitted.String()).To(Equal("Submitted"))
		Expect(expense.Status(9).Valid()).To(BeFalse())
	})
})
