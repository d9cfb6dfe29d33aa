package user

import (
	"time"

	"github.com/frahmantamala/expense-approval/internal/core/common/degraded"
	userDatamodel "github.com/frahmantamala/expense-approval/internal/core/datamodel/user"
)

// User is an active account together with its role name.
type User struct {
	ID        int64     `json:"userId"`
	Name      string    `json:"userName"`
	Email     string    `json:"email"`
	RoleID    int64     `json:"roleId"`
	RoleName  string    `json:"roleName"`
	ManagerID *int64    `json:"managerId"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

const (
	RoleEmployee = "Employee"
	RoleManager  = "Manager"
)

func FromDataModel(u *userDatamodel.UserWithRole) *User {
	return &User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		RoleID:    u.RoleID,
		RoleName:  u.RoleName,
		ManagerID: u.ManagerID,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		RoleID:    u.RoleID,
		ManagerID: u.ManagerID,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// SampleUsers is the placeholder set served when storage is unavailable.
func SampleUsers(now time.Time) []*User {
	return []*User{
		{
			ID:        1,
			Name:      "Alice Example " + degraded.SampleTag,
			Email:     "alice@example.co.uk",
			RoleID:    1,
			RoleName:  RoleEmployee,
			IsActive:  true,
			CreatedAt: now.AddDate(0, -6, 0),
		},
		{
			ID:        2,
			Name:      "Bob Manager " + degraded.SampleTag,
			Email:     "bob.manager@example.co.uk",
			RoleID:    2,
			RoleName:  RoleManager,
			IsActive:  true,
			CreatedAt: now.AddDate(0, -12, 0),
		},
	}
}
