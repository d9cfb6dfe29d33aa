package category

type ExpenseCategory struct {
	ID       int64  `gorm:"column:id;primaryKey"`
	Name     string `gorm:"column:name;uniqueIndex;not null"`
	IsActive bool   `gorm:"column:is_active;not null"`
}

func (ExpenseCategory) TableName() string {
	return "expense_categories"
}
