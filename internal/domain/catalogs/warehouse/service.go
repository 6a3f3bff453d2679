package warehouse

import (
	"context"

	"stockalloc/internal/core/apperror"
)

// Service provides business logic for the Warehouse catalog.
type Service struct {
	repo Repository
}

// NewService creates a new Warehouse service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get retrieves a warehouse by code.
func (s *Service) Get(ctx context.Context, code string) (*Warehouse, error) {
	if code == "" {
		return nil, apperror.NewInvalidArgument("warehouse code is required")
	}
	return s.repo.GetByCode(ctx, code)
}

// EnsureActive verifies the warehouse exists and is operational.
func (s *Service) EnsureActive(ctx context.Context, code string) error {
	wh, err := s.Get(ctx, code)
	if err != nil {
		return err
	}
	if !wh.IsActive {
		return apperror.NewInvalidArgument("warehouse is not active").
			WithDetail("warehouse", code)
	}
	return nil
}
