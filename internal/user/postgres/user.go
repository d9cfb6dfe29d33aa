package postgres

import (
	"context"
	"fmt"

	userDatamodel "github.com/frahmantamala/expense-approval/internal/core/datamodel/user"
	"github.com/jmoiron/sqlx"
)

// Queries are written with ? placeholders and rebound for the driver in use.
const (
	listActiveQuery = `
SELECT u.id, u.name, u.email, u.role_id, u.manager_id, u.is_active, u.created_at,
       r.name AS role_name
FROM users u
JOIN roles r ON r.id = u.role_id
WHERE u.is_active = ?
ORDER BY u.name, u.id`

	insertRoleQuery = `INSERT INTO roles (name) VALUES (?) RETURNING id`

	insertUserQuery = `
INSERT INTO users (name, email, role_id, manager_id, is_active, created_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id`
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (p *Repository) ListActive(ctx context.Context) ([]*userDatamodel.UserWithRole, error) {
	var users []*userDatamodel.UserWithRole
	if err := p.db.SelectContext(ctx, &users, p.db.Rebind(listActiveQuery), true); err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}
	return users, nil
}

func (p *Repository) CreateRole(ctx context.Context, name string) (int64, error) {
	var id int64
	if err := p.db.QueryRowxContext(ctx, p.db.Rebind(insertRoleQuery), name).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert role %s: %w", name, err)
	}
	return id, nil
}

func (p *Repository) Create(ctx context.Context, u *userDatamodel.User) error {
	err := p.db.QueryRowxContext(ctx, p.db.Rebind(insertUserQuery),
		u.Name, u.Email, u.RoleID, u.ManagerID, u.IsActive, u.CreatedAt,
	).Scan(&u.ID)
	if err != nil {
		return fmt.Errorf("insert user %s: %w", u.Email, err)
	}
	return nil
}
