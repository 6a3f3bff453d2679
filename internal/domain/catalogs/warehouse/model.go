// Package warehouse provides the warehouse catalog: physical locations
// stock is allocated from.
package warehouse

// Warehouse represents a storage location for goods.
type Warehouse struct {
	// Code is the unique warehouse identifier
	Code string `db:"code" json:"code"`

	// Name is the display name
	Name string `db:"name" json:"name"`

	// IsActive indicates if warehouse is operational
	IsActive bool `db:"is_active" json:"isActive"`
}
