package category

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/expense-approval/internal"
	"github.com/frahmantamala/expense-approval/internal/core/common/degraded"
	categoryDatamodel "github.com/frahmantamala/expense-approval/internal/core/datamodel/category"
)

type RepositoryAPI interface {
	ListActive(ctx context.Context) ([]*categoryDatamodel.ExpenseCategory, error)
	Create(ctx context.Context, category *categoryDatamodel.ExpenseCategory) error
}

type Service struct {
	repo     RepositoryAPI
	fallback bool
	logger   *slog.Logger
}

// NewService builds the category service. With fallback set, listings are
// served from SampleCategories when the repository fails.
func NewService(repo RepositoryAPI, fallback bool, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		fallback: fallback,
		logger:   logger,
	}
}

func (s *Service) ListCategories(ctx context.Context) (degraded.Listing[*Category], error) {
	dataCategories, err := s.repo.ListActive(ctx)
	if err != nil {
		if !s.fallback {
			s.logger.Error("failed to get categories from repository", "error", err)
			return degraded.Listing[*Category]{}, internal.NewStorageError("failed to list categories", err)
		}
		s.logger.Warn("category listing served from sample data", "error", err)
		return degraded.Fallback(SampleCategories(), err), nil
	}

	categories := make([]*Category, 0, len(dataCategories))
	for _, dataCategory := range dataCategories {
		categories = append(categories, FromDataModel(dataCategory))
	}

	s.logger.Debug("retrieved categories", "count", len(categories))
	return degraded.Live(categories), nil
}

func (s *Service) CreateCategory(ctx context.Context, name string) (*Category, error) {
	if name == "" {
		return nil, internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}

	dataCategory := ToDataModel(NewCategory(name))
	if err := s.repo.Create(ctx, dataCategory); err != nil {
		s.logger.Error("failed to create category", "error", err, "name", name)
		return nil, internal.NewStorageError(fmt.Sprintf("failed to create category %q", name), err)
	}

	return FromDataModel(dataCategory), nil
}
