package expense_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/frahmantamala/expense-approval/internal/expense"
	"github.com/frahmantamala/expense-approval/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Handler", func() {
	var (
		repo   *mockRepository
		router *chi.Mux
	)

	BeforeEach(func() {
		repo = newMockRepository()
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		service := expense.NewService(repo, nil, expense.Options{StrictTransitions: true, SampleDataOnFailure: true}, logger)
		handler := expense.NewHandler(service)
		handler.BaseHandler = transport.NewBaseHandler(logger)

		router = chi.NewRouter()
		router.Route("/api", handler.RegisterRoutes)
	})

	do := func(method, target string, body interface{}) *httptest.ResponseRecorder {
		var reader io.Reader
		if body != nil {
			raw, err := json.Marshal(body)
			Expect(err).NotTo(HaveOccurred())
			reader = bytes.NewReader(raw)
		}
		req := httptest.NewRequest(method, target, reader)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	payload := func() map[string]interface{} {
		return map[string]interface{}{
			"userId":      1,
			"categoryId":  1,
			"statusId":    1,
			"amountMinor": 2540,
			"currency":    "GBP",
			"expenseDate": time.Now().AddDate(0, 0, -5).Format("2006-01-02"),
			"description": "Taxi from airport",
		}
	}

	Describe("POST /api/expenses", func() {
		It("should create an expense and point at it", func() {
			w := do(http.MethodPost, "/api/expenses", payload())
			Expect(w.Code).To(Equal(http.StatusCreated))

			var created expense.Expense
			Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())
			Expect(created.ID).To(BeNumerically(">", 0))
			Expect(created.AmountMinor).To(Equal(int64(2540)))
			Expect(w.Header().Get("Location")).To(Equal("/api/expenses/1"))
		})

		It("should reject malformed JSON", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/expenses", bytes.NewBufferString("{"))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("should reject an unparseable date", func() {
			body := payload()
			body["expenseDate"] = "yesterday"
			w := do(http.MethodPost, "/api/expenses", body)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("should report storage faults as 400 with the cause", func() {
			repo.failWith = errConnectionRefused
			w := do(http.MethodPost, "/api/expenses", payload())
			Expect(w.Code).To(Equal(http.StatusBadRequest))

			var body transport.ErrorBody
			Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
			Expect(body.Message).To(Equal("Failed to create expense"))
			Expect(body.Error).To(ContainSubstring("connection refused"))
		})
	})

	Describe("GET /api/expenses", func() {
		It("should filter by user and status", func() {
			repo.seed(newDraft(1, 100))
			repo.seed(newDraft(2, 200))

			w := do(http.MethodGet, "/api/expenses?userId=2&statusId=1", nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get(transport.DegradedHeader)).To(BeEmpty())

			var list []expense.Expense
			Expect(json.NewDecoder(w.Body).Decode(&list)).To(Succeed())
			Expect(list).To(HaveLen(1))
			Expect(list[0].UserID).To(Equal(int64(2)))
		})

		It("should flag placeholder data with a header", func() {
			repo.failWith = errConnectionRefused
			w := do(http.MethodGet, "/api/expenses", nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get(transport.DegradedHeader)).To(Equal("true"))

			var list []expense.Expense
			Expect(json.NewDecoder(w.Body).Decode(&list)).To(Succeed())
			Expect(list).NotTo(BeEmpty())
		})

		It("should reject a non-numeric filter", func() {
			w := do(http.MethodGet, "/api/expenses?userId=abc", nil)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GET /api/expenses/{id}", func() {
		It("should return the expense", func() {
			stored := repo.seed(newDraft(1, 100))
			w := do(http.MethodGet, "/api/expenses/1", nil)
			Expect(w.Code).To(Equal(http.StatusOK))

			var got expense.Expense
			Expect(json.NewDecoder(w.Body).Decode(&got)).To(Succeed())
			Expect(got.ID).To(Equal(stored.ID))
		})

		It("should return 404 with a message", func() {
			w := do(http.MethodGet, "/api/expenses/77", nil)
			Expect(w.Code).To(Equal(http.StatusNotFound))

			var body expense.MessageResponse
			Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
			Expect(body.Message).To(Equal("Expense with ID 77 not found"))
		})

		It("should answer 500 when storage fails", func() {
			repo.failWith = errConnectionRefused
			w := do(http.MethodGet, "/api/expenses/1", nil)
			Expect(w.Code).To(Equal(http.StatusInternalServerError))
		})
	})

	Describe("PUT /api/expenses/{id}", func() {
		It("should update and answer 204", func() {
			repo.seed(newDraft(1, 100))
			body := payload()
			body["expenseId"] = 1
			body["amountMinor"] = 5000

			w := do(http.MethodPut, "/api/expenses/1", body)
			Expect(w.Code).To(Equal(http.StatusNoContent))
			Expect(repo.expenses[1].AmountMinor).To(Equal(int64(5000)))
		})

		It("should reject an id mismatch", func() {
			repo.seed(newDraft(1, 100))
			body := payload()
			body["expenseId"] = 2

			w := do(http.MethodPut, "/api/expenses/1", body)
			Expect(w.Code).To(Equal(http.StatusBadRequest))

			var resp transport.ErrorBody
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Message).To(Equal("Expense ID mismatch"))
			Expect(repo.lastWrite).To(BeNil())
		})

		It("should answer 404 for a missing expense", func() {
			body := payload()
			body["expenseId"] = 9
			w := do(http.MethodPut, "/api/expenses/9", body)
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("DELETE /api/expenses/{id}", func() {
		It("should delete and answer 204", func() {
			repo.seed(newDraft(1, 100))
			w := do(http.MethodDelete, "/api/expenses/1", nil)
			Expect(w.Code).To(Equal(http.StatusNoContent))
			Expect(repo.expenses).To(BeEmpty())
		})

		It("should answer 400 with the cause on storage faults", func() {
			repo.failWith = errConnectionRefused
			w := do(http.MethodDelete, "/api/expenses/1", nil)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("workflow endpoints", func() {
		It("should submit then approve", func() {
			repo.seed(newDraft(1, 2540))

			w := do(http.MethodPost, "/api/expenses/1/submit", nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			var msg expense.MessageResponse
			Expect(json.NewDecoder(w.Body).Decode(&msg)).To(Succeed())
			Expect(msg.Message).To(Equal("Expense submitted successfully"))

			w = do(http.MethodPost, "/api/expenses/1/approve?reviewerId=2", nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(repo.expenses[1].StatusID).To(Equal(expense.StatusApproved))
			Expect(*repo.expenses[1].ReviewedBy).To(Equal(int64(2)))
		})

		It("should reject a submitted expense", func() {
			e := newDraft(1, 100)
			e.StatusID = expense.StatusSubmitted
			repo.seed(e)

			w := do(http.MethodPost, "/api/expenses/1/reject?reviewerId=2", nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(repo.expenses[1].StatusID).To(Equal(expense.StatusRejected))
		})

		It("should answer 404 for unknown expenses", func() {
			Expect(do(http.MethodPost, "/api/expenses/5/submit", nil).Code).To(Equal(http.StatusNotFound))
			Expect(do(http.MethodPost, "/api/expenses/5/approve?reviewerId=2", nil).Code).To(Equal(http.StatusNotFound))
			Expect(do(http.MethodPost, "/api/expenses/5/reject?reviewerId=2", nil).Code).To(Equal(http.StatusNotFound))
		})

		It("should answer 400 for an illegal transition", func() {
			e := newDraft(1, 100)
			e.StatusID = expense.StatusRejected
			repo.seed(e)

			w := do(http.MethodPost, "/api/expenses/1/approve?reviewerId=2", nil)
			Expect(w.Code).To(Equal(http.StatusBadRequest))

			var resp transport.ErrorBody
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Code).To(Equal("INVALID_TRANSITION"))
		})

		It("should answer 400 without a reviewer", func() {
			e := newDraft(1, 100)
			e.StatusID = expense.StatusSubmitted
			repo.seed(e)

			Expect(do(http.MethodPost, "/api/expenses/1/approve", nil).Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GET /api/statuses", func() {
		It("should list statuses", func() {
			w := do(http.MethodGet, "/api/statuses", nil)
			Expect(w.Code).To(Equal(http.StatusOK))

			var list []expense.ExpenseStatus
			Expect(json.NewDecoder(w.Body).Decode(&list)).To(Succeed())
			Expect(list).To(HaveLen(4))
		})
	})

	Describe("GET /api/overview", func() {
		It("should report live data", func() {
			repo.seed(newDraft(1, 100))
			w := do(http.MethodGet, "/api/overview", nil)
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp expense.OverviewResponse
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Degraded).To(BeFalse())
			Expect(resp.Error).To(BeEmpty())
			Expect(resp.Expenses).To(HaveLen(1))
		})

		It("should report degraded data with its cause", func() {
			repo.failWith = errConnectionRefused
			w := do(http.MethodGet, "/api/overview", nil)

			var resp expense.OverviewResponse
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Degraded).To(BeTrue())
			Expect(resp.Error).To(ContainSubstring("connection refused"))
			Expect(resp.Expenses).To(HaveLen(2))
		})
	})
})
