package item

import (
	"context"

	"stockalloc/internal/core/apperror"
)

// Service provides business logic for the Item catalog.
type Service struct {
	repo Repository
}

// NewService creates a new Item service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get retrieves an item by code.
func (s *Service) Get(ctx context.Context, code string) (*Item, error) {
	if code == "" {
		return nil, apperror.NewInvalidArgument("item code is required")
	}
	return s.repo.GetByCode(ctx, code)
}

// ShortdatedMonths returns the item's shortdated alert horizon. It
// implements the allocation.ItemSource contract.
func (s *Service) ShortdatedMonths(ctx context.Context, code string) (int, error) {
	it, err := s.Get(ctx, code)
	if err != nil {
		return 0, err
	}
	if !it.Allocatable() {
		return 0, apperror.NewInvalidArgument("item is not batch-tracked").
			WithDetail("itemCode", code)
	}
	return it.ShortdatedMonths, nil
}
