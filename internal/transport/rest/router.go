package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/expense-approval/api"
	"github.com/frahmantamala/expense-approval/internal/category"
	"github.com/frahmantamala/expense-approval/internal/expense"
	"github.com/frahmantamala/expense-approval/internal/transport"
	"github.com/frahmantamala/expense-approval/internal/transport/middleware"
	"github.com/frahmantamala/expense-approval/internal/transport/swagger"
	"github.com/frahmantamala/expense-approval/internal/user"
	"github.com/go-chi/chi"
)

// Dependencies is everything the router mounts. With ValidateRequests set,
// /api requests are checked against the embedded OpenAPI document.
type Dependencies struct {
	DB               Pinger
	DBComponent      string
	AllowedOrigins   string
	ValidateRequests bool

	ExpenseHandler  *expense.Handler
	CategoryHandler *category.Handler
	UserHandler     *user.Handler
}

func RegisterAllRoutes(router *chi.Mux, deps Dependencies, logger *slog.Logger) error {
	var validator func(http.Handler) http.Handler
	if deps.ValidateRequests {
		doc, err := middleware.LoadOpenAPI(context.Background(), api.OpenAPI)
		if err != nil {
			return err
		}
		if validator, err = middleware.OpenAPIValidator(doc, logger); err != nil {
			return err
		}
	}

	component := deps.DBComponent
	if component == "" {
		component = "database"
	}
	healthHandler := NewHealthHandler(transport.NewBaseHandler(logger), deps.DB, component)

	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.CORS(deps.AllowedOrigins))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(api.OpenAPI)
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api", func(r chi.Router) {
		if validator != nil {
			r.Use(validator)
		}

		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if deps.ExpenseHandler != nil {
			deps.ExpenseHandler.RegisterRoutes(r)
		}
		if deps.CategoryHandler != nil {
			r.Get("/categories", deps.CategoryHandler.GetCategories)
		}
		if deps.UserHandler != nil {
			r.Get("/users", deps.UserHandler.GetUsers)
		}
	})

	return nil
}
