package user

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/expense-approval/internal/core/common/degraded"
	"github.com/frahmantamala/expense-approval/internal/transport"
	"github.com/frahmantamala/expense-approval/pkg/logger"
)

type ServiceAPI interface {
	ListUsers(ctx context.Context) (degraded.Listing[*User], error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// GetUsers handles GET /users
func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	listing, err := h.Service.ListUsers(r.Context())
	if err != nil {
		h.HandleReadError(w, err, "Failed to retrieve users")
		return
	}

	h.WriteListing(w, listing.Items, listing.Degraded)
}
