package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/frahmantamala/expense-approval/internal/expense"
	"github.com/frahmantamala/expense-approval/internal/store"
	"github.com/spf13/cobra"
)

var expenseCmd = &cobra.Command{
	Use:   "expense",
	Short: "Operate on expenses from the command line",
}

var (
	filterUserID   int64
	filterStatusID int64
	reviewerID     int64
	createRequest  expense.ExpenseRequest
	createDesc     string
)

// withSession loads the config, opens the store and hands a fresh session
// to fn. The session's last error becomes the command error when fn reports
// failure.
func withSession(fn func(ctx context.Context, s *store.Session) (interface{}, bool)) error {
	cfg, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	app, err := newApplication(cfg)
	if err != nil {
		return err
	}
	defer app.Close(context.Background())

	session := app.session()
	result, ok := fn(context.Background(), session)
	if !ok {
		if err := session.LastError(); err != nil {
			return err
		}
		return fmt.Errorf("operation failed")
	}
	if session.Degraded() {
		fmt.Fprintf(os.Stderr, "warning: placeholder data served: %v\n", session.LastError())
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid expense id %q", arg)
	}
	return id, nil
}

func optional(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return &v
}

var listExpensesCmd = &cobra.Command{
	Use:   "list",
	Short: "List expenses, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(ctx context.Context, s *store.Session) (interface{}, bool) {
			list := s.ListExpenses(ctx, optional(filterUserID), optional(filterStatusID))
			return list, s.LastError() == nil || s.Degraded()
		})
	},
}

var getExpenseCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show one expense",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withSession(func(ctx context.Context, s *store.Session) (interface{}, bool) {
			e := s.GetExpense(ctx, id)
			return e, e != nil
		})
	},
}

var createExpenseCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an expense",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if createDesc != "" {
			createRequest.Description = &createDesc
		}
		e, err := createRequest.ToExpense()
		if err != nil {
			return err
		}
		return withSession(func(ctx context.Context, s *store.Session) (interface{}, bool) {
			id := s.CreateExpense(ctx, e)
			return map[string]int64{"expenseId": id}, id != store.FailedID
		})
	},
}

var deleteExpenseCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete an expense",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withSession(func(ctx context.Context, s *store.Session) (interface{}, bool) {
			return map[string]int64{"deleted": id}, s.DeleteExpense(ctx, id)
		})
	},
}

func workflowCmd(action expense.Action, needsReviewer bool) *cobra.Command {
	return &cobra.Command{
		Use:   string(action) + " [id]",
		Short: fmt.Sprintf("%s an expense", action),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if needsReviewer && reviewerID <= 0 {
				return fmt.Errorf("--reviewer is required to %s", action)
			}
			return withSession(func(ctx context.Context, s *store.Session) (interface{}, bool) {
				var ok bool
				switch action {
				case expense.ActionSubmit:
					ok = s.Submit(ctx, id)
				case expense.ActionApprove:
					ok = s.Approve(ctx, id, reviewerID)
				case expense.ActionReject:
					ok = s.Reject(ctx, id, reviewerID)
				}
				if !ok {
					return nil, false
				}
				return s.GetExpense(ctx, id), true
			})
		},
	}
}

func init() {
	listExpensesCmd.Flags().Int64Var(&filterUserID, "user", 0, "only expenses submitted by this user id")
	listExpensesCmd.Flags().Int64Var(&filterStatusID, "status", 0, "only expenses in this status id")

	createExpenseCmd.Flags().Int64Var(&createRequest.UserID, "user", 0, "owner user id")
	createExpenseCmd.Flags().Int64Var(&createRequest.CategoryID, "category", 0, "category id")
	createExpenseCmd.Flags().Int64Var(&createRequest.AmountMinor, "amount", 0, "amount in minor units, e.g. 2540 for 25.40")
	createExpenseCmd.Flags().StringVar(&createRequest.Currency, "currency", "GBP", "ISO 4217 currency code")
	createExpenseCmd.Flags().StringVar(&createRequest.ExpenseDate, "date", "", "expense date, YYYY-MM-DD")
	createExpenseCmd.Flags().StringVar(&createDesc, "description", "", "free-text description")

	approve := workflowCmd(expense.ActionApprove, true)
	reject := workflowCmd(expense.ActionReject, true)
	for _, c := range []*cobra.Command{approve, reject} {
		c.Flags().Int64Var(&reviewerID, "reviewer", 0, "reviewing user id")
	}

	expenseCmd.AddCommand(listExpensesCmd, getExpenseCmd, createExpenseCmd, deleteExpenseCmd,
		workflowCmd(expense.ActionSubmit, false), approve, reject)
	rootCmd.AddCommand(expenseCmd)
}
