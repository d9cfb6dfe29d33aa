package category

import (
	"context"
	"net/http"

	"github.com/frahmantamala/expense-approval/internal/core/common/degraded"
	"github.com/frahmantamala/expense-approval/internal/transport"
)

type ServiceAPI interface {
	ListCategories(ctx context.Context) (degraded.Listing[*Category], error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	listing, err := h.Service.ListCategories(r.Context())
	if err != nil {
		h.HandleReadError(w, err, "Failed to retrieve categories")
		return
	}

	h.WriteListing(w, listing.Items, listing.Degraded)
}
