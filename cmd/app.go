package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/expense-approval/internal"
	"github.com/frahmantamala/expense-approval/internal/category"
	categoryRepo "github.com/frahmantamala/expense-approval/internal/category/postgres"
	"github.com/frahmantamala/expense-approval/internal/core/events"
	"github.com/frahmantamala/expense-approval/internal/expense"
	expenseRepo "github.com/frahmantamala/expense-approval/internal/expense/postgres"
	"github.com/frahmantamala/expense-approval/internal/store"
	"github.com/frahmantamala/expense-approval/internal/user"
	userRepo "github.com/frahmantamala/expense-approval/internal/user/postgres"
	"github.com/frahmantamala/expense-approval/pkg/logger"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// application holds the wired services shared by the server and the CLI
// commands. gorm and sqlx share one *sql.DB.
type application struct {
	cfg    *internal.Config
	logger *slog.Logger
	db     *sqlx.DB
	gormDB *gorm.DB
	bus    *events.EventBus

	expenses   *expense.Service
	categories *category.Service
	users      *user.Service
}

func newApplication(cfg *internal.Config) (*application, error) {
	logger.Configure(cfg.Observability.Logging.Format, cfg.Observability.Logging.Level)
	lg := logger.LoggerWrapper()

	db, err := initDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(cfg.Database, db, lg)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	bus := events.NewEventBus(lg)
	events.LogWorkflowEvents(bus, lg)

	fallback := cfg.Workflow.SampleDataOnFailure
	return &application{
		cfg:    cfg,
		logger: lg,
		db:     db,
		gormDB: gormDB,
		bus:    bus,
		expenses: expense.NewService(expenseRepo.NewExpenseRepository(gormDB), bus, expense.Options{
			StrictTransitions:   cfg.Workflow.StrictTransitions,
			SampleDataOnFailure: fallback,
			OperationTimeout:    cfg.Workflow.OperationTimeout,
		}, lg),
		categories: category.NewService(categoryRepo.NewCategoryRepository(gormDB), fallback, lg),
		users:      user.NewService(userRepo.NewRepository(db), fallback, lg),
	}, nil
}

// session returns a fresh store.Session for one CLI invocation.
func (a *application) session() *store.Session {
	return store.NewSession(a.expenses, a.categories, a.users)
}

// Close waits for in-flight event handlers, then closes the database.
func (a *application) Close(ctx context.Context) error {
	if err := a.bus.Drain(ctx); err != nil {
		a.logger.Warn("event handlers still running at shutdown", "error", err)
	}
	return a.db.Close()
}

// initDB opens the connection pool for the configured driver.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	driver := "pgx"
	if cfg.Driver == internal.DriverSQLite {
		driver = "sqlite3"
	}

	db, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	if cfg.Driver == internal.DriverSQLite {
		// sqlite allows a single writer
		db.SetMaxOpenConns(1)
	}

	return db, nil
}

func initGorm(cfg internal.DatabaseConfig, db *sqlx.DB, lg *slog.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if cfg.Driver == internal.DriverSQLite {
		dialector = sqlite.Dialector{Conn: db.DB}
	} else {
		dialector = postgres.New(postgres.Config{Conn: db.DB})
	}

	return gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(slog.NewLogLogger(lg.Handler(), slog.LevelWarn), gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
}
