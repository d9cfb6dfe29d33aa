package expense

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/expense-approval/internal/core/common/degraded"
	"github.com/frahmantamala/expense-approval/internal/transport"
	"github.com/frahmantamala/expense-approval/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	ListExpenses(ctx context.Context, filter Filter) (degraded.Listing[*Expense], error)
	GetExpense(ctx context.Context, id int64) (*Expense, error)
	CreateExpense(ctx context.Context, exp *Expense) (*Expense, error)
	UpdateExpense(ctx context.Context, id int64, exp *Expense) error
	DeleteExpense(ctx context.Context, id int64) error
	SubmitExpense(ctx context.Context, id int64) (*Expense, error)
	ApproveExpense(ctx context.Context, id, reviewerID int64) (*Expense, error)
	RejectExpense(ctx context.Context, id, reviewerID int64) (*Expense, error)
	ListStatuses(ctx context.Context) (degraded.Listing[*ExpenseStatus], error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// RegisterRoutes mounts the expense, status and overview endpoints on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/expenses", func(er chi.Router) {
		er.Get("/", h.ListExpenses)
		er.Post("/", h.CreateExpense)
		er.Get("/{id}", h.GetExpense)
		er.Put("/{id}", h.UpdateExpense)
		er.Delete("/{id}", h.DeleteExpense)
		er.Post("/{id}/submit", h.SubmitExpense)
		er.Post("/{id}/approve", h.ApproveExpense)
		er.Post("/{id}/reject", h.RejectExpense)
	})
	r.Get("/statuses", h.ListStatuses)
	r.Get("/overview", h.Overview)
}

func notFoundMessage(id int64) string {
	return fmt.Sprintf("Expense with ID %d not found", id)
}

func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	userID, err := h.QueryInt64(r, "userId")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	statusID, err := h.QueryInt64(r, "statusId")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	listing, err := h.Service.ListExpenses(r.Context(), Filter{UserID: userID, StatusID: statusID})
	if err != nil {
		h.HandleReadError(w, err, "Failed to retrieve expenses")
		return
	}
	if listing.Degraded {
		h.Logger.Warn("ListExpenses: serving sample data", "cause", listing.CauseMessage())
	}

	h.WriteListing(w, listing.Items, listing.Degraded)
}

func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	exp, err := h.Service.GetExpense(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrExpenseNotFound) {
			h.WriteError(w, http.StatusNotFound, notFoundMessage(id))
			return
		}
		h.HandleReadError(w, err, "Failed to retrieve expense")
		return
	}

	h.WriteJSON(w, http.StatusOK, exp)
}

func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	exp, ok := h.decodeExpense(w, r)
	if !ok {
		return
	}

	created, err := h.Service.CreateExpense(r.Context(), exp)
	if err != nil {
		h.HandleServiceError(w, err, "Failed to create expense")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/expenses/%d", created.ID))
	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	exp, ok := h.decodeExpense(w, r)
	if !ok {
		return
	}

	if err := h.Service.UpdateExpense(r.Context(), id, exp); err != nil {
		if errors.Is(err, ErrExpenseNotFound) {
			h.WriteError(w, http.StatusNotFound, notFoundMessage(id))
			return
		}
		h.HandleServiceError(w, err, "Failed to update expense")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Service.DeleteExpense(r.Context(), id); err != nil {
		if errors.Is(err, ErrExpenseNotFound) {
			h.WriteError(w, http.StatusNotFound, notFoundMessage(id))
			return
		}
		h.HandleServiceError(w, err, "Failed to delete expense")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SubmitExpense(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, ActionSubmit)
}

func (h *Handler) ApproveExpense(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, ActionApprove)
}

func (h *Handler) RejectExpense(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, ActionReject)
}

var transitionMessages = map[Action]string{
	ActionSubmit:  "submitted",
	ActionApprove: "approved",
	ActionReject:  "rejected",
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, action Action) {
	id, err := h.PathID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var reviewerID int64
	if action != ActionSubmit {
		reviewer, err := h.QueryInt64(r, "reviewerId")
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		if reviewer != nil {
			reviewerID = *reviewer
		}
	}

	switch action {
	case ActionSubmit:
		_, err = h.Service.SubmitExpense(r.Context(), id)
	case ActionApprove:
		_, err = h.Service.ApproveExpense(r.Context(), id, reviewerID)
	case ActionReject:
		_, err = h.Service.RejectExpense(r.Context(), id, reviewerID)
	}
	if err != nil {
		if errors.Is(err, ErrExpenseNotFound) {
			h.WriteError(w, http.StatusNotFound, notFoundMessage(id))
			return
		}
		h.HandleServiceError(w, err, fmt.Sprintf("Failed to %s expense", action))
		return
	}

	h.WriteJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Expense %s successfully", transitionMessages[action]),
	})
}

func (h *Handler) ListStatuses(w http.ResponseWriter, r *http.Request) {
	listing, err := h.Service.ListStatuses(r.Context())
	if err != nil {
		h.HandleReadError(w, err, "Failed to retrieve statuses")
		return
	}
	h.WriteListing(w, listing.Items, listing.Degraded)
}

// Overview returns every expense together with an explicit degraded flag,
// so dashboards can label placeholder data.
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	listing, err := h.Service.ListExpenses(r.Context(), Filter{})
	if err != nil {
		h.HandleReadError(w, err, "Failed to retrieve expenses")
		return
	}

	h.WriteJSON(w, http.StatusOK, OverviewResponse{
		Expenses: listing.Items,
		Degraded: listing.Degraded,
		Error:    listing.CauseMessage(),
	})
}

func (h *Handler) decodeExpense(w http.ResponseWriter, r *http.Request) (*Expense, bool) {
	var req ExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Warn("invalid request body", "error", err)
		h.WriteErrorBody(w, http.StatusBadRequest, transport.ErrorBody{Message: "Invalid request body", Error: err.Error()})
		return nil, false
	}

	exp, err := req.ToExpense()
	if err != nil {
		h.HandleServiceError(w, err, "Invalid request body")
		return nil, false
	}
	return exp, true
}
