package expense

import (
	"time"

	categoryDatamodel "github.com/frahmantamala/expense-approval/internal/core/datamodel/category"
	userDatamodel "github.com/frahmantamala/expense-approval/internal/core/datamodel/user"
)

type Expense struct {
	ID          int64      `gorm:"column:id;primaryKey"`
	UserID      int64      `gorm:"column:user_id;not null"`
	CategoryID  int64      `gorm:"column:category_id;not null"`
	StatusID    int64      `gorm:"column:status_id;not null"`
	AmountMinor int64      `gorm:"column:amount_minor;not null"`
	Currency    string     `gorm:"column:currency;size:3;not null"`
	ExpenseDate time.Time  `gorm:"column:expense_date;type:date;not null"`
	Description *string    `gorm:"column:description"`
	ReceiptFile *string    `gorm:"column:receipt_file"`
	SubmittedAt *time.Time `gorm:"column:submitted_at"`
	ReviewedBy  *int64     `gorm:"column:reviewed_by"`
	ReviewedAt  *time.Time `gorm:"column:reviewed_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;not null"`

	// Relations exist for the foreign key constraints AutoMigrate creates.
	// Queries never preload them.
	User     *userDatamodel.User                `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:RESTRICT"`
	Category *categoryDatamodel.ExpenseCategory `gorm:"foreignKey:CategoryID;references:ID;constraint:OnDelete:RESTRICT"`
	Status   *ExpenseStatus                     `gorm:"foreignKey:StatusID;references:ID;constraint:OnDelete:RESTRICT"`
	Reviewer *userDatamodel.User                `gorm:"foreignKey:ReviewedBy;references:ID;constraint:OnDelete:RESTRICT"`
}

func (Expense) TableName() string {
	return "expenses"
}

// ExpenseView is an expense row joined with the display names of its
// submitter, category, status and reviewer.
type ExpenseView struct {
	Expense
	UserName     string  `gorm:"column:user_name"`
	CategoryName string  `gorm:"column:category_name"`
	StatusName   string  `gorm:"column:status_name"`
	ReviewerName *string `gorm:"column:reviewer_name"`
}

type ExpenseStatus struct {
	ID   int64  `gorm:"column:id;primaryKey;autoIncrement:false"`
	Name string `gorm:"column:name;uniqueIndex;not null"`
}

func (ExpenseStatus) TableName() string {
	return "expense_statuses"
}
