package item

import (
	"context"
)

// Repository defines the interface for Item persistence.
type Repository interface {
	// GetByCode retrieves an item by its code.
	GetByCode(ctx context.Context, code string) (*Item, error)

	// Exists checks whether an item code is known.
	Exists(ctx context.Context, code string) (bool, error)
}
