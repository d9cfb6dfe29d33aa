package cmd

import (
	"context"
	"errors"
	"fmt"

	migrations "github.com/frahmantamala/expense-approval/db"
	"github.com/frahmantamala/expense-approval/internal"
	categoryDatamodel "github.com/frahmantamala/expense-approval/internal/core/datamodel/category"
	expenseDatamodel "github.com/frahmantamala/expense-approval/internal/core/datamodel/expense"
	userDatamodel "github.com/frahmantamala/expense-approval/internal/core/datamodel/user"
	"github.com/frahmantamala/expense-approval/internal/expense"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "Apply the db/migrations schema (gorm AutoMigrate for sqlite)",
	}
	migrateRollback bool
	migrateDir      string
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
	migrateCmd.PersistentFlags().StringVarP(&migrateDir, "dir", "d", "", "sql migrations directory on disk (default: the embedded db/migrations)")
}

func runMigration(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(configDir)
	if err != nil {
		return err
	}

	if cfg.Database.Driver == internal.DriverSQLite {
		return migrateSQLite(cfg)
	}

	db, err := goose.OpenDBWithDriver("pgx", cfg.Database.Source)
	if err != nil {
		return fmt.Errorf("goose: failed to open DB: %w", err)
	}
	defer db.Close()

	goose.SetTableName("schema_migrations")
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	dir := migrateDir
	if dir == "" {
		goose.SetBaseFS(migrations.Migrations)
		dir = migrations.MigrationsDir
	} else {
		goose.SetBaseFS(nil)
	}

	command := "up"
	if migrateRollback {
		command = "down"
	}
	if err := goose.RunContext(ctx, command, db, dir); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// migrateSQLite builds the schema from the row models; goose's SQL files
// use postgres types.
func migrateSQLite(cfg *internal.Config) error {
	if migrateRollback {
		return errors.New("rollback is not supported for the sqlite driver")
	}

	app, err := newApplication(cfg)
	if err != nil {
		return err
	}
	defer app.Close(context.Background())

	if err := autoMigrate(app.gormDB); err != nil {
		return err
	}
	app.logger.Info("sqlite schema migrated", "source", cfg.Database.Source)
	return nil
}

func autoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&userDatamodel.Role{},
		&userDatamodel.User{},
		&categoryDatamodel.ExpenseCategory{},
		&expenseDatamodel.ExpenseStatus{},
		&expenseDatamodel.Expense{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	statuses := make([]*expenseDatamodel.ExpenseStatus, 0, 4)
	for _, s := range expense.AllStatuses() {
		statuses = append(statuses, &expenseDatamodel.ExpenseStatus{ID: int64(s), Name: s.String()})
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(statuses).Error; err != nil {
		return fmt.Errorf("insert statuses: %w", err)
	}
	return nil
}
