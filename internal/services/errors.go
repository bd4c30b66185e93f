package services

import "errors"

// ErrorKind labels a settlement failure so the client can render an accurate
// message and operators can tell "customer charged but no stock recorded"
// apart from "customer never charged".
type ErrorKind string

const (
	KindValidation          ErrorKind = "VALIDATION_ERROR"
	KindPaymentRejected     ErrorKind = "PAYMENT_REJECTED"
	KindProductNotFound     ErrorKind = "PRODUCT_NOT_FOUND"
	KindInsufficientStock   ErrorKind = "INSUFFICIENT_STOCK"
	KindProviderUnavailable ErrorKind = "PROVIDER_UNAVAILABLE"
	KindPersistenceFailure  ErrorKind = "PERSISTENCE_FAILURE"
)

// CheckoutError is a classified settlement failure.
type CheckoutError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *CheckoutError) Error() string {
	return e.Message
}

func (e *CheckoutError) Unwrap() error {
	return e.Err
}

// AsCheckoutError extracts a *CheckoutError from an error chain.
func AsCheckoutError(err error) (*CheckoutError, bool) {
	var ce *CheckoutError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// ErrInvalidOrderStatus rejects a status outside the closed order status set.
var ErrInvalidOrderStatus = errors.New("invalid order status")
