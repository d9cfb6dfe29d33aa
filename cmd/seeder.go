package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/expense-approval/internal/category"
	categoryDatamodel "github.com/frahmantamala/expense-approval/internal/core/datamodel/category"
	expenseDatamodel "github.com/frahmantamala/expense-approval/internal/core/datamodel/expense"
	userDatamodel "github.com/frahmantamala/expense-approval/internal/core/datamodel/user"
	"github.com/frahmantamala/expense-approval/internal/expense"
	"github.com/frahmantamala/expense-approval/internal/user"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed roles, users, categories and a draft expense for development and testing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configDir)
		if err != nil {
			return err
		}

		app, err := newApplication(cfg)
		if err != nil {
			return err
		}
		defer app.Close(context.Background())

		return seed(context.Background(), app, clearData)
	},
}

func seed(ctx context.Context, app *application, clear bool) error {
	if clear {
		if err := clearTables(app.gormDB); err != nil {
			return err
		}
		app.logger.Info("cleared existing data")
	} else {
		var users int64
		if err := app.gormDB.Model(&userDatamodel.User{}).Count(&users).Error; err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		if users > 0 {
			app.logger.Info("database already seeded; pass --clear to reseed", "users", users)
			return nil
		}
	}

	employeeRole, err := app.users.CreateRole(ctx, user.RoleEmployee)
	if err != nil {
		return err
	}
	managerRole, err := app.users.CreateRole(ctx, user.RoleManager)
	if err != nil {
		return err
	}

	bob, err := app.users.Register(ctx, &user.User{
		Name:     "Bob Manager",
		Email:    "bob.manager@example.co.uk",
		RoleID:   managerRole,
		IsActive: true,
	})
	if err != nil {
		return err
	}
	alice, err := app.users.Register(ctx, &user.User{
		Name:      "Alice Example",
		Email:     "alice@example.co.uk",
		RoleID:    employeeRole,
		ManagerID: &bob.ID,
		IsActive:  true,
	})
	if err != nil {
		return err
	}
	app.logger.Info("seeded users", "employee", alice.Email, "manager", bob.Email)

	var travel *category.Category
	for _, name := range category.DefaultNames {
		c, err := app.categories.CreateCategory(ctx, name)
		if err != nil {
			return err
		}
		if travel == nil {
			travel = c
		}
	}
	app.logger.Info("seeded categories", "count", len(category.DefaultNames))

	description := "Train to client site"
	draft, err := app.expenses.CreateExpense(ctx, &expense.Expense{
		UserID:      alice.ID,
		CategoryID:  travel.ID,
		StatusID:    expense.StatusDraft,
		AmountMinor: 4250,
		Currency:    "GBP",
		ExpenseDate: time.Now().UTC().AddDate(0, 0, -3).Truncate(24 * time.Hour),
		Description: &description,
	})
	if err != nil {
		return err
	}
	app.logger.Info("seeded draft expense", "expense_id", draft.ID)

	return nil
}

func clearTables(db *gorm.DB) error {
	for _, model := range []interface{}{
		&expenseDatamodel.Expense{},
		&userDatamodel.User{},
		&userDatamodel.Role{},
		&categoryDatamodel.ExpenseCategory{},
	} {
		if err := db.Where("1 = 1").Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}
