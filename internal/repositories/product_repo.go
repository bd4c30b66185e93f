package repositories

import (
	"gadup/internal/models"
)

// ProductFilter narrows catalog listings.
type ProductFilter struct {
	Category     string
	FeaturedOnly bool
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll(filter ProductFilter) ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error

	// DecrementStock performs one atomic conditional update: subtract qty
	// where the current stock covers it. Returns ErrProductNotFound when the
	// product does not exist and *InsufficientStockError when it does but the
	// stock is short. Check-then-write in application code is not an option
	// here; concurrent settlements must serialize at the storage layer.
	DecrementStock(id string, qty int) error

	// IncrementStock restores stock, used to compensate partial reservations.
	IncrementStock(id string, qty int) error
}
