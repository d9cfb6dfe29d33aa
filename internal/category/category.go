package category

import (
	categoryDatamodel "github.com/frahmantamala/expense-approval/internal/core/datamodel/category"
	"github.com/frahmantamala/expense-approval/internal/core/common/degraded"
)

type Category struct {
	ID       int64  `json:"categoryId"`
	Name     string `json:"categoryName"`
	IsActive bool   `json:"isActive"`
}

func NewCategory(name string) *Category {
	return &Category{Name: name, IsActive: true}
}

func ToDataModel(c *Category) *categoryDatamodel.ExpenseCategory {
	return &categoryDatamodel.ExpenseCategory{
		ID:       c.ID,
		Name:     c.Name,
		IsActive: c.IsActive,
	}
}

func FromDataModel(c *categoryDatamodel.ExpenseCategory) *Category {
	return &Category{
		ID:       c.ID,
		Name:     c.Name,
		IsActive: c.IsActive,
	}
}

// DefaultNames are the categories seeded into a fresh database, in id order.
var DefaultNames = []string{"Travel", "Meals", "Supplies", "Accommodation", "Other"}

// SampleCategories is the placeholder set served when storage is unavailable.
func SampleCategories() []*Category {
	categories := make([]*Category, len(DefaultNames))
	for i, name := range DefaultNames {
		categories[i] = &Category{ID: int64(i + 1), Name: name + " " + degraded.SampleTag, IsActive: true}
	}
	return categories
}
