package repositories

import (
	"gadup/internal/models"
)

// IncomeWindow aggregates paid-order revenue over one time window.
type IncomeWindow struct {
	TotalIncome float64 `json:"total_income"`
	OrdersCount int64   `json:"orders_count"`
}

// IncomeStats is the admin revenue report.
type IncomeStats struct {
	Daily   IncomeWindow `json:"daily"`
	Weekly  IncomeWindow `json:"weekly"`
	Monthly IncomeWindow `json:"monthly"`
	Yearly  IncomeWindow `json:"yearly"`
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	GetByUser(userID string) ([]models.Order, error)

	// GetByReference looks an order up by its payment reference. Returns
	// ErrOrderNotFound when no order carries the reference.
	GetByReference(reference string) (*models.Order, error)

	// Create inserts the order. Returns ErrDuplicateReference when another
	// order already carries the same payment reference.
	Create(order *models.Order) error

	UpdateStatus(id string, status string) error

	// IncomeStats sums paid-order revenue over rolling windows.
	IncomeStats() (*IncomeStats, error)
}
