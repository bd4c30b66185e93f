package services

import (
	"fmt"

	"gadup/internal/models"
	"gadup/internal/repositories"
)

// OrderService handles the administrative side of orders: listing,
// status advancement, and revenue reporting. Order creation itself happens
// only through CheckoutService.
type OrderService struct {
	orderRepo repositories.OrderRepository
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
	}
}

// GetAllOrders retrieves all orders, newest first.
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

// UpdateOrderStatus advances the status of an existing order within the
// closed status set.
func (s *OrderService) UpdateOrderStatus(id string, status string) error {
	if !models.ValidOrderStatus(status) {
		return fmt.Errorf("%w: %s", ErrInvalidOrderStatus, status)
	}

	if err := s.orderRepo.UpdateStatus(id, status); err != nil {
		return fmt.Errorf("failed to update order status for order %s: %w", id, err)
	}
	return nil
}

// IncomeStats reports paid-order revenue over rolling windows.
func (s *OrderService) IncomeStats() (*repositories.IncomeStats, error) {
	return s.orderRepo.IncomeStats()
}
