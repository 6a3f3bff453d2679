package warehouse

import (
	"context"
)

// Repository defines the interface for Warehouse persistence.
type Repository interface {
	// GetByCode retrieves a warehouse by its code.
	GetByCode(ctx context.Context, code string) (*Warehouse, error)

	// Exists checks whether a warehouse code is known.
	Exists(ctx context.Context, code string) (bool, error)
}
