package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/expense-approval/internal/category"
	"github.com/frahmantamala/expense-approval/internal/expense"
	"github.com/frahmantamala/expense-approval/internal/transport"
	"github.com/frahmantamala/expense-approval/internal/transport/rest"
	"github.com/frahmantamala/expense-approval/internal/user"
	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := startHTTPServer(); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	},
}

func startHTTPServer() error {
	cfg, err := loadConfig(configDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app, err := newApplication(cfg)
	if err != nil {
		return err
	}

	router, err := setupRoutes(app)
	if err != nil {
		_ = app.Close(context.Background())
		return fmt.Errorf("failed to register routes: %w", err)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		app.logger.Info("starting HTTP server",
			"address", addr,
			"driver", cfg.Database.Driver,
			"strict_transitions", cfg.Workflow.StrictTransitions)
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		app.logger.Info("received signal, shutting down", "signal", sig.String())
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = app.Close(context.Background())
			return fmt.Errorf("server failed: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		app.logger.Error("server shutdown error", "error", err)
	}
	if err := app.Close(ctx); err != nil {
		app.logger.Error("database close error", "error", err)
	}

	app.logger.Info("server stopped")
	return nil
}

func setupRoutes(app *application) (*chi.Mux, error) {
	base := transport.NewBaseHandler(app.logger)

	expenseHandler := expense.NewHandler(app.expenses)
	expenseHandler.BaseHandler = base
	userHandler := user.NewHandler(app.users)
	userHandler.BaseHandler = base

	router := chi.NewRouter()
	err := rest.RegisterAllRoutes(router, rest.Dependencies{
		DB:               app.db,
		DBComponent:      app.cfg.Database.Driver,
		AllowedOrigins:   app.cfg.Server.AllowedOrigins,
		ValidateRequests: app.cfg.Server.ValidateRequests,
		ExpenseHandler:   expenseHandler,
		CategoryHandler:  category.NewHandler(base, app.categories),
		UserHandler:      userHandler,
	}, app.logger)
	return router, err
}
