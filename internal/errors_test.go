package internal_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/frahmantamala/expense-approval/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AppError", func() {
	It("should match sentinels by type and code regardless of cause", func() {
		err := internal.ErrInvalidTransition.WithCause(errors.New("approved expenses are final"))
		Expect(errors.Is(err, internal.ErrInvalidTransition)).To(BeTrue())
		Expect(errors.Is(err, internal.ErrExpenseNotFound)).To(BeFalse())
		Expect(internal.ErrInvalidTransition.Cause).To(BeNil())
	})

	It("should unwrap to the storage cause", func() {
		cause := errors.New("connection refused")
		err := fmt.Errorf("update: %w", internal.NewStorageError("failed to update expense", cause))

		Expect(errors.Is(err, internal.ErrStorageFailure)).To(BeTrue())
		Expect(errors.Is(err, cause)).To(BeTrue())

		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(http.StatusInternalServerError))
		Expect(appErr.GetDetailedMessage()).To(Equal("connection refused"))
	})

	It("should report illegal transitions as bad requests", func() {
		Expect(internal.ErrInvalidTransition.StatusCode).To(Equal(http.StatusBadRequest))
		Expect(internal.ErrExpenseNotFound.StatusCode).To(Equal(http.StatusNotFound))
	})

	It("should describe field errors by their message", func() {
		err := internal.NewValidationFieldError("currency", "currency must be a three letter ISO 4217 code", internal.ErrCodeInvalidCurrency)
		Expect(err.Error()).To(Equal("currency must be a three letter ISO 4217 code"))

		raw, marshalErr := json.Marshal(err)
		Expect(marshalErr).NotTo(HaveOccurred())
		Expect(string(raw)).To(ContainSubstring(`"field":"currency"`))
		Expect(string(raw)).NotTo(ContainSubstring("StatusCode"))
	})
})
