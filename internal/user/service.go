package user

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/expense-approval/internal"
	"github.com/frahmantamala/expense-approval/internal/core/common/degraded"
	userDatamodel "github.com/frahmantamala/expense-approval/internal/core/datamodel/user"
)

type Repository interface {
	ListActive(ctx context.Context) ([]*userDatamodel.UserWithRole, error)
	CreateRole(ctx context.Context, name string) (int64, error)
	Create(ctx context.Context, u *userDatamodel.User) error
}

type Service struct {
	repo     Repository
	fallback bool
	logger   *slog.Logger
}

func NewService(repo Repository, fallback bool, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		fallback: fallback,
		logger:   logger,
	}
}

func (s *Service) ListUsers(ctx context.Context) (degraded.Listing[*User], error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		if !s.fallback {
			s.logger.Error("failed to list users", "error", err)
			return degraded.Listing[*User]{}, internal.NewStorageError("failed to list users", err)
		}
		s.logger.Warn("user listing served from sample data", "error", err)
		return degraded.Fallback(SampleUsers(time.Now()), err), nil
	}

	users := make([]*User, len(rows))
	for i, row := range rows {
		users[i] = FromDataModel(row)
	}
	return degraded.Live(users), nil
}

// Register creates a user under an existing role.
func (s *Service) Register(ctx context.Context, u *User) (*User, error) {
	if u.Name == "" || u.Email == "" {
		return nil, internal.NewValidationError("name and email are required", internal.ErrCodeValidationFailed)
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	row := ToDataModel(u)
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create user", "error", err, "email", u.Email)
		return nil, internal.NewStorageError(fmt.Sprintf("failed to create user %s", u.Email), err)
	}

	u.ID = row.ID
	return u, nil
}

func (s *Service) CreateRole(ctx context.Context, name string) (int64, error) {
	id, err := s.repo.CreateRole(ctx, name)
	if err != nil {
		s.logger.Error("failed to create role", "error", err, "role", name)
		return 0, internal.NewStorageError(fmt.Sprintf("failed to create role %s", name), err)
	}
	return id, nil
}
