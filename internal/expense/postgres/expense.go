package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	expenseDatamodel "github.com/frahmantamala/expense-approval/internal/core/datamodel/expense"
	"github.com/frahmantamala/expense-approval/internal/expense"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const viewColumns = `e.id, e.user_id, e.category_id, e.status_id, e.amount_minor, e.currency,
	e.expense_date, e.description, e.receipt_file, e.submitted_at, e.reviewed_by,
	e.reviewed_at, e.created_at,
	u.name AS user_name, c.name AS category_name, s.name AS status_name, r.name AS reviewer_name`

// ExpenseRepository implements expense.RepositoryAPI using GORM.
type ExpenseRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewExpenseRepository(db *gorm.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db, now: time.Now}
}

// joined selects expenses together with the display names of their
// submitter, category, status and (optional) reviewer.
func (r *ExpenseRepository) joined(db *gorm.DB) *gorm.DB {
	return db.Table("expenses AS e").
		Select(viewColumns).
		Joins("JOIN users u ON u.id = e.user_id").
		Joins("JOIN expense_categories c ON c.id = e.category_id").
		Joins("JOIN expense_statuses s ON s.id = e.status_id").
		Joins("LEFT JOIN users r ON r.id = e.reviewed_by")
}

// List returns expenses newest first. Both filters are optional and combine
// with AND.
func (r *ExpenseRepository) List(ctx context.Context, filter expense.Filter) ([]*expense.Expense, error) {
	query := r.joined(r.db.WithContext(ctx))
	if filter.UserID != nil {
		query = query.Where("e.user_id = ?", *filter.UserID)
	}
	if filter.StatusID != nil {
		query = query.Where("e.status_id = ?", *filter.StatusID)
	}

	var views []*expenseDatamodel.ExpenseView
	if err := query.Order("e.created_at DESC, e.id DESC").Scan(&views).Error; err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return expense.FromViewSlice(views), nil
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id int64) (*expense.Expense, error) {
	return r.getByID(r.db.WithContext(ctx), id)
}

func (r *ExpenseRepository) getByID(db *gorm.DB, id int64) (*expense.Expense, error) {
	var views []*expenseDatamodel.ExpenseView
	if err := r.joined(db).Where("e.id = ?", id).Limit(1).Scan(&views).Error; err != nil {
		return nil, fmt.Errorf("failed to get expense %d: %w", id, err)
	}
	if len(views) == 0 {
		return nil, expense.ErrExpenseNotFound
	}
	return expense.FromView(views[0]), nil
}

// Create inserts the expense and stamps its store-assigned id and creation
// time back onto exp.
func (r *ExpenseRepository) Create(ctx context.Context, exp *expense.Expense) error {
	row := expense.ToDataModel(exp)
	row.ID = 0
	row.CreatedAt = r.now().UTC()

	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}

	exp.ID = row.ID
	exp.CreatedAt = row.CreatedAt
	return nil
}

// Update overwrites every mutable column. Nil pointers clear their column.
func (r *ExpenseRepository) Update(ctx context.Context, exp *expense.Expense) error {
	return r.update(r.db.WithContext(ctx), exp)
}

func (r *ExpenseRepository) update(db *gorm.DB, exp *expense.Expense) error {
	result := db.Model(&expenseDatamodel.Expense{}).
		Where("id = ?", exp.ID).
		Updates(mutableColumns(exp))
	if result.Error != nil {
		return fmt.Errorf("failed to update expense %d: %w", exp.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return expense.ErrExpenseNotFound
	}
	return nil
}

func mutableColumns(exp *expense.Expense) map[string]interface{} {
	return map[string]interface{}{
		"category_id":  exp.CategoryID,
		"status_id":    int64(exp.StatusID),
		"amount_minor": exp.AmountMinor,
		"currency":     exp.Currency,
		"expense_date": exp.ExpenseDate,
		"description":  exp.Description,
		"receipt_file": exp.ReceiptFile,
		"submitted_at": exp.SubmittedAt,
		"reviewed_by":  exp.ReviewedBy,
		"reviewed_at":  exp.ReviewedAt,
	}
}

func (r *ExpenseRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&expenseDatamodel.Expense{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete expense %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return expense.ErrExpenseNotFound
	}
	return nil
}

// Transition loads the expense under a row lock, lets apply mutate it and
// writes the full row back before the lock is released. An error from apply
// rolls the transaction back and is returned unchanged.
func (r *ExpenseRepository) Transition(ctx context.Context, id int64, apply func(*expense.Expense) error) (*expense.Expense, error) {
	var updated *expense.Expense
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row expenseDatamodel.Expense
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			Take(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return expense.ErrExpenseNotFound
			}
			return fmt.Errorf("failed to lock expense %d: %w", id, err)
		}

		exp := expense.FromDataModel(&row)
		if err := apply(exp); err != nil {
			return err
		}
		if err := r.update(tx, exp); err != nil {
			return err
		}

		updated, err = r.getByID(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *ExpenseRepository) ListStatuses(ctx context.Context) ([]*expense.ExpenseStatus, error) {
	var rows []*expenseDatamodel.ExpenseStatus
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list statuses: %w", err)
	}

	statuses := make([]*expense.ExpenseStatus, len(rows))
	for i, row := range rows {
		statuses[i] = &expense.ExpenseStatus{StatusID: row.ID, StatusName: row.Name}
	}
	return statuses, nil
}
