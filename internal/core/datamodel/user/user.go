package user

import "time"

type User struct {
	ID        int64     `db:"id" gorm:"column:id;primaryKey"`
	Name      string    `db:"name" gorm:"column:name;not null"`
	Email     string    `db:"email" gorm:"column:email;uniqueIndex;not null"`
	RoleID    int64     `db:"role_id" gorm:"column:role_id;not null"`
	ManagerID *int64    `db:"manager_id" gorm:"column:manager_id"`
	IsActive  bool      `db:"is_active" gorm:"column:is_active;not null"`
	CreatedAt time.Time `db:"created_at" gorm:"column:created_at;not null"`
}

func (User) TableName() string {
	return "users"
}

type Role struct {
	ID   int64  `db:"id" gorm:"column:id;primaryKey"`
	Name string `db:"name" gorm:"column:name;uniqueIndex;not null"`
}

func (Role) TableName() string {
	return "roles"
}

// UserWithRole is a user row joined with its role name.
type UserWithRole struct {
	User
	RoleName string `db:"role_name"`
}
