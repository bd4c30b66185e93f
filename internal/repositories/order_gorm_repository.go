package repositories

import (
	"errors"
	"fmt"
	"time"

	"gadup/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// GetAll retrieves all orders, newest first.
func (r *GORMOrderRepository) GetAll() ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	return orders, nil
}

// GetByID retrieves a single order by its ID.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %s: %w", id, ErrOrderNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// GetByUser retrieves a user's orders, newest first.
func (r *GORMOrderRepository) GetByUser(userID string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get orders for user %s: %w", userID, err)
	}
	return orders, nil
}

// GetByReference retrieves an order by its payment reference.
func (r *GORMOrderRepository) GetByReference(reference string) (*models.Order, error) {
	var order models.Order
	if err := r.db.First(&order, "reference = ?", reference).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with reference %s: %w", reference, ErrOrderNotFound)
		}
		return nil, fmt.Errorf("failed to get order by reference %s: %w", reference, err)
	}
	return &order, nil
}

// Create inserts a new order. The unique index on reference turns a
// concurrent double settlement into ErrDuplicateReference instead of a
// second order row. Requires gorm.Config{TranslateError: true}.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if err := r.db.Create(order).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("order with reference %s: %w", order.Reference, ErrDuplicateReference)
		}
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// UpdateStatus updates the status of an order.
func (r *GORMOrderRepository) UpdateStatus(id string, status string) error {
	res := r.db.Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update order status for order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s: %w", id, ErrOrderNotFound)
	}
	return nil
}

// IncomeStats sums paid-order revenue over rolling day/week/month/year
// windows.
func (r *GORMOrderRepository) IncomeStats() (*IncomeStats, error) {
	now := time.Now()
	stats := &IncomeStats{}

	windows := []struct {
		since  time.Time
		target *IncomeWindow
	}{
		{now.AddDate(0, 0, -1), &stats.Daily},
		{now.AddDate(0, 0, -7), &stats.Weekly},
		{now.AddDate(0, -1, 0), &stats.Monthly},
		{now.AddDate(-1, 0, 0), &stats.Yearly},
	}

	for _, w := range windows {
		err := r.db.Model(&models.Order{}).
			Where("status = ? AND created_at >= ?", models.OrderStatusPaid, w.since).
			Select("COALESCE(SUM(total), 0) AS total_income, COUNT(*) AS orders_count").
			Scan(w.target).Error
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate income stats: %w", err)
		}
	}
	return stats, nil
}
