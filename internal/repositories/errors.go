package repositories

import (
	"errors"
	"fmt"
)

// Storage-level sentinel errors. Services translate these into their own
// error taxonomy; handlers never match on error strings.
var (
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrAddressNotFound = errors.New("address not found")

	// ErrDuplicateReference signals a second order insert carrying a payment
	// reference that already exists. The unique index on orders.reference is
	// the backstop for concurrent settlements of the same payment.
	ErrDuplicateReference = errors.New("order reference already exists")
)

// InsufficientStockError reports a failed conditional stock decrement. It
// names the product and the requested vs. available quantities so the caller
// can render an exact message.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s (requested: %d, available: %d)", e.Name, e.Requested, e.Available)
}
