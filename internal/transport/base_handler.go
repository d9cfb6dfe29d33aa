package transport

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/expense-approval/internal"
	"github.com/frahmantamala/expense-approval/pkg/logger"
	"github.com/go-chi/chi"
)

// DegradedHeader marks listing responses that were served from placeholder
// data because storage was unavailable.
const DegradedHeader = "X-Data-Degraded"

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

// ErrorBody is the failure payload of the REST surface. Error carries the
// underlying cause for storage failures.
type ErrorBody struct {
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
	Error   string      `json:"error,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes an error response
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.WriteErrorBody(w, status, ErrorBody{Message: message})
}

func (h *BaseHandler) WriteErrorBody(w http.ResponseWriter, status int, body ErrorBody) {
	if status >= http.StatusInternalServerError {
		h.Logger.Error("http error", "status", status, "message", body.Message, "error", body.Error)
	} else {
		h.Logger.Warn("http error", "status", status, "message", body.Message)
	}
	h.WriteJSON(w, status, body)
}

// WriteListing writes a plain JSON list, flagging placeholder data with
// DegradedHeader.
func (h *BaseHandler) WriteListing(w http.ResponseWriter, items interface{}, degraded bool) {
	if degraded {
		w.Header().Set(DegradedHeader, "true")
	}
	h.WriteJSON(w, http.StatusOK, items)
}

// HandleServiceError maps an error returned by a service to a response.
//
// Not-found errors become 404 {message}. Validation and state errors become
// 400. Storage faults raised while writing are reported as 400 with the
// cause in "error", matching the failure contract of the write endpoints;
// use HandleReadError for reads.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, err error, failure string) {
	h.handle(w, err, failure, http.StatusBadRequest)
}

// HandleReadError is HandleServiceError for reads, where a storage fault is
// a 500.
func (h *BaseHandler) HandleReadError(w http.ResponseWriter, err error, failure string) {
	h.handle(w, err, failure, http.StatusInternalServerError)
}

func (h *BaseHandler) handle(w http.ResponseWriter, err error, failure string, storageStatus int) {
	appErr, ok := internal.IsAppError(err)
	if !ok {
		h.WriteErrorBody(w, http.StatusInternalServerError, ErrorBody{Message: failure, Error: err.Error()})
		return
	}

	switch appErr.Type {
	case internal.ErrorTypeNotFound:
		h.WriteError(w, http.StatusNotFound, appErr.Message)
	case internal.ErrorTypeValidation, internal.ErrorTypeConflict:
		body := ErrorBody{Message: appErr.Message, Code: string(appErr.Code), Details: appErr.Details}
		if appErr.Cause != nil {
			body.Error = appErr.Cause.Error()
		}
		h.WriteErrorBody(w, http.StatusBadRequest, body)
	default:
		h.WriteErrorBody(w, storageStatus, ErrorBody{
			Message: failure,
			Code:    string(appErr.Code),
			Error:   appErr.GetDetailedMessage(),
		})
	}
}

// PathID parses the {id} URL parameter.
func (h *BaseHandler) PathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// QueryInt64 parses an optional integer query parameter. A missing
// parameter yields nil.
func (h *BaseHandler) QueryInt64(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", name, raw)
	}
	return &v, nil
}
