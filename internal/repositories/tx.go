package repositories

import (
	"gorm.io/gorm"
)

// TxRunner executes a unit of work against product and order storage. The
// GORM implementation wraps the work in one database transaction so a stock
// decrement and its order insert commit or roll back together; the mock
// implementation has no such guarantee, which is exactly why settlement also
// carries its own compensation logic.
type TxRunner interface {
	RunInTx(fn func(products ProductRepository, orders OrderRepository) error) error
}

// GORMTxRunner runs the unit of work inside a database transaction.
type GORMTxRunner struct {
	db *gorm.DB
}

// NewGORMTxRunner creates a new GORMTxRunner.
func NewGORMTxRunner(db *gorm.DB) *GORMTxRunner {
	return &GORMTxRunner{db: db}
}

// RunInTx opens a transaction and hands transaction-scoped repositories to fn.
// Any error from fn rolls the whole transaction back.
func (r *GORMTxRunner) RunInTx(fn func(products ProductRepository, orders OrderRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewGORMProductRepository(tx), NewGORMOrderRepository(tx))
	})
}

// MockTxRunner hands the configured repositories straight to fn with no
// transactional scope.
type MockTxRunner struct {
	Products ProductRepository
	Orders   OrderRepository
}

// NewMockTxRunner creates a new MockTxRunner over the given repositories.
func NewMockTxRunner(products ProductRepository, orders OrderRepository) *MockTxRunner {
	return &MockTxRunner{Products: products, Orders: orders}
}

// RunInTx executes fn directly.
func (r *MockTxRunner) RunInTx(fn func(products ProductRepository, orders OrderRepository) error) error {
	return fn(r.Products, r.Orders)
}
