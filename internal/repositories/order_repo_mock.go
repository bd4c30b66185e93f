package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"gadup/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]models.Order
	byRef  map[string]string
	mu     sync.RWMutex

	// CreateErr, when set, makes the next Create fail. Used to exercise the
	// write-failure path of settlement.
	CreateErr error
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
		byRef:  make(map[string]string),
	}
}

// GetAll returns all orders, newest first.
func (r *MockOrderRepository) GetAll() ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		orderList = append(orderList, order)
	}
	sort.Slice(orderList, func(i, j int) bool {
		return orderList[i].CreatedAt.After(orderList[j].CreatedAt)
	})
	return orderList, nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrOrderNotFound)
	}
	return &order, nil
}

// GetByUser returns a user's orders, newest first.
func (r *MockOrderRepository) GetByUser(userID string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var orderList []models.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			orderList = append(orderList, order)
		}
	}
	sort.Slice(orderList, func(i, j int) bool {
		return orderList[i].CreatedAt.After(orderList[j].CreatedAt)
	})
	return orderList, nil
}

// GetByReference returns the order carrying the payment reference.
func (r *MockOrderRepository) GetByReference(reference string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byRef[reference]
	if !ok {
		return nil, fmt.Errorf("order with reference %s: %w", reference, ErrOrderNotFound)
	}
	order := r.orders[id]
	return &order, nil
}

// Create adds a new order, enforcing reference uniqueness like the real
// store's unique index does.
func (r *MockOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CreateErr != nil {
		err := r.CreateErr
		r.CreateErr = nil
		return err
	}

	if _, exists := r.byRef[order.Reference]; exists {
		return fmt.Errorf("order with reference %s: %w", order.Reference, ErrDuplicateReference)
	}

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = *order
	r.byRef[order.Reference] = order.ID
	return nil
}

// UpdateStatus updates the status of an order.
func (r *MockOrderRepository) UpdateStatus(id string, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order with ID %s: %w", id, ErrOrderNotFound)
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}

// IncomeStats sums paid-order revenue over rolling windows.
func (r *MockOrderRepository) IncomeStats() (*IncomeStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := time.Now()
	stats := &IncomeStats{}
	for _, order := range r.orders {
		if order.Status != models.OrderStatusPaid {
			continue
		}
		if order.CreatedAt.After(now.AddDate(0, 0, -1)) {
			stats.Daily.TotalIncome += order.Total
			stats.Daily.OrdersCount++
		}
		if order.CreatedAt.After(now.AddDate(0, 0, -7)) {
			stats.Weekly.TotalIncome += order.Total
			stats.Weekly.OrdersCount++
		}
		if order.CreatedAt.After(now.AddDate(0, -1, 0)) {
			stats.Monthly.TotalIncome += order.Total
			stats.Monthly.OrdersCount++
		}
		if order.CreatedAt.After(now.AddDate(-1, 0, 0)) {
			stats.Yearly.TotalIncome += order.Total
			stats.Yearly.OrdersCount++
		}
	}
	return stats, nil
}
