package services

import (
	"context"
	"errors"
	"fmt"

	"gadup/internal/models"
	"gadup/internal/repositories"
	"gadup/pkg/paystack"
	"gadup/pkg/rabbitmq"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentVerifier confirms a transaction reference against the payment
// provider's record of truth. Implemented by *paystack.Client.
type PaymentVerifier interface {
	VerifyTransaction(ctx context.Context, reference string) (*paystack.Verification, error)
}

// EventPublisher emits settlement events. Implemented by *rabbitmq.Client.
type EventPublisher interface {
	PublishOrderSettled(event rabbitmq.OrderSettledEvent) error
}

// CheckoutItemInput is one requested cart line: untrusted, revalidated and
// repriced server-side.
type CheckoutItemInput struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// CheckoutInput is the settlement request body. The shipping address comes
// either inline or as AddressID referencing a saved address-book entry; the
// nested address is excluded from request-level validation so the AddressID
// form does not have to carry an inline address too.
type CheckoutInput struct {
	Reference string                 `json:"reference" validate:"required"`
	Items     []CheckoutItemInput    `json:"items" validate:"required,min=1,dive"`
	AddressID string                 `json:"address_id"`
	Address   models.ShippingAddress `json:"address" validate:"-"`
	UserName  string                 `json:"user_name" validate:"required"`
	UserEmail string                 `json:"user_email" validate:"required,email"`
}

// CheckoutService settles purchases: it verifies the payment with the
// provider, reserves stock, and writes the order ledger entry exactly once
// per payment reference.
type CheckoutService struct {
	tx       repositories.TxRunner
	orders   repositories.OrderRepository
	users    repositories.UserRepository
	verifier PaymentVerifier
	events   EventPublisher
	logger   *zap.Logger
}

// NewCheckoutService creates a new CheckoutService. events may be nil when
// no broker is configured.
func NewCheckoutService(tx repositories.TxRunner, orders repositories.OrderRepository, users repositories.UserRepository, verifier PaymentVerifier, events EventPublisher, logger *zap.Logger) *CheckoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutService{
		tx:       tx,
		orders:   orders,
		users:    users,
		verifier: verifier,
		events:   events,
		logger:   logger,
	}
}

// Settle runs the full settlement flow for one payment reference:
//
//	verify payment -> reserve stock -> write order -> publish event
//
// The reference is the idempotency key: settling the same reference twice
// returns the already-written order instead of charging stock again. Stock
// decrement and order insert run inside one storage transaction; within the
// transaction each decrement is itself an atomic conditional update, so
// concurrent settlements of the last unit serialize at the storage layer.
func (s *CheckoutService) Settle(ctx context.Context, userID string, input CheckoutInput) (*models.Order, error) {
	if len(input.Items) == 0 {
		return nil, &CheckoutError{Kind: KindValidation, Message: "cart is empty"}
	}

	// Duplicate callback or client retry: the reference already settled.
	if existing, err := s.orders.GetByReference(input.Reference); err == nil {
		s.logger.Info("settlement replayed for existing order",
			zap.String("reference", input.Reference),
			zap.String("order_id", existing.ID))
		return existing, nil
	} else if !errors.Is(err, repositories.ErrOrderNotFound) {
		return nil, &CheckoutError{Kind: KindPersistenceFailure, Message: "could not check existing orders", Err: err}
	}

	shipTo, err := s.resolveAddress(userID, input)
	if err != nil {
		return nil, err
	}

	verification, err := s.verifier.VerifyTransaction(ctx, input.Reference)
	if err != nil {
		switch {
		case errors.Is(err, paystack.ErrPaymentRejected):
			return nil, &CheckoutError{Kind: KindPaymentRejected, Message: "payment could not be confirmed", Err: err}
		default:
			return nil, &CheckoutError{Kind: KindProviderUnavailable, Message: "payment provider unavailable, please try again", Err: err}
		}
	}

	var order *models.Order
	txErr := s.tx.RunInTx(func(products repositories.ProductRepository, orders repositories.OrderRepository) error {
		resolved, total, rerr := s.reserveItems(products, input.Items)
		if rerr != nil {
			return rerr
		}

		o := &models.Order{
			ID:            uuid.New().String(),
			UserID:        userID,
			Items:         resolved,
			Total:         total,
			PaymentMethod: "paystack",
			Reference:     input.Reference,
			Address:       shipTo,
			UserName:      input.UserName,
			UserEmail:     input.UserEmail,
			Status:        models.OrderStatusPaid,
		}

		if cerr := orders.Create(o); cerr != nil {
			if errors.Is(cerr, repositories.ErrDuplicateReference) {
				// A concurrent settlement of the same reference won the
				// insert. Undo our decrements and adopt the winner's order.
				// On PostgreSQL this adoption runs inside an aborted
				// transaction and surfaces as PERSISTENCE_FAILURE instead; the
				// retry then lands on the GetByReference pre-check. Tradeoff
				// recorded in DESIGN.md.
				s.releaseItems(products, resolved)
				existing, gerr := orders.GetByReference(input.Reference)
				if gerr != nil {
					return &CheckoutError{Kind: KindPersistenceFailure, Message: "could not load settled order", Err: gerr}
				}
				order = existing
				return nil
			}

			// Stock was committed in this operation but the ledger write
			// failed. A transactional store rolls the decrements back with
			// this error; a non-transactional one leaves stock short with no
			// order, so the incident is logged loudly either way.
			s.logger.Error("order write failed after stock reservation; reconciliation required",
				zap.String("reference", input.Reference),
				zap.String("user_id", userID),
				zap.Float64("total", total),
				zap.Error(cerr))
			return &CheckoutError{
				Kind:    KindPersistenceFailure,
				Message: fmt.Sprintf("something went wrong, please contact support with reference %s", input.Reference),
				Err:     cerr,
			}
		}

		order = o
		return nil
	})
	if txErr != nil {
		if _, ok := AsCheckoutError(txErr); ok {
			return nil, txErr
		}
		return nil, &CheckoutError{Kind: KindPersistenceFailure, Message: "could not settle order", Err: txErr}
	}

	s.logger.Info("order settled",
		zap.String("order_id", order.ID),
		zap.String("reference", order.Reference),
		zap.Float64("total", order.Total),
		zap.Int64("verified_amount", verification.Amount),
		zap.String("currency", verification.Currency))

	if s.events != nil {
		event := rabbitmq.OrderSettledEvent{
			OrderID:   order.ID,
			UserID:    order.UserID,
			Reference: order.Reference,
			Total:     order.Total,
			Status:    order.Status,
		}
		if perr := s.events.PublishOrderSettled(event); perr != nil {
			// Event delivery is best effort; the settlement already committed.
			s.logger.Warn("failed to publish order settled event",
				zap.String("order_id", order.ID),
				zap.Error(perr))
		}
	}

	return order, nil
}

// resolveAddress picks the shipping address for the order: the saved
// address-book entry when AddressID is set, else the inline address. The
// lookup is scoped to the buyer, so one user cannot ship against another's
// saved address.
func (s *CheckoutService) resolveAddress(userID string, input CheckoutInput) (models.ShippingAddress, error) {
	if input.AddressID == "" {
		return input.Address, nil
	}

	addresses, err := s.users.ListAddresses(userID)
	if err != nil {
		return models.ShippingAddress{}, &CheckoutError{Kind: KindPersistenceFailure, Message: "could not load saved addresses", Err: err}
	}
	for _, address := range addresses {
		if address.ID == input.AddressID {
			return address.Snapshot(), nil
		}
	}
	return models.ShippingAddress{}, &CheckoutError{
		Kind:    KindValidation,
		Message: fmt.Sprintf("saved address %s not found", input.AddressID),
	}
}

// reserveItems decrements stock for every requested line and resolves the
// unit prices to charge. All-or-nothing: a failure on any line releases the
// decrements already applied in this call before returning.
func (s *CheckoutService) reserveItems(products repositories.ProductRepository, items []CheckoutItemInput) ([]models.OrderItem, float64, error) {
	var (
		resolved []models.OrderItem
		applied  []CheckoutItemInput
		total    float64
	)

	for _, item := range items {
		product, err := products.GetByID(item.ProductID)
		if err != nil {
			s.releaseApplied(products, applied)
			if errors.Is(err, repositories.ErrProductNotFound) {
				return nil, 0, &CheckoutError{
					Kind:    KindProductNotFound,
					Message: fmt.Sprintf("product %s no longer exists", item.ProductID),
					Err:     err,
				}
			}
			return nil, 0, &CheckoutError{Kind: KindPersistenceFailure, Message: "could not load product", Err: err}
		}

		if err := products.DecrementStock(item.ProductID, item.Quantity); err != nil {
			s.releaseApplied(products, applied)

			var stockErr *repositories.InsufficientStockError
			switch {
			case errors.As(err, &stockErr):
				return nil, 0, &CheckoutError{
					Kind:    KindInsufficientStock,
					Message: fmt.Sprintf("insufficient stock for %s (requested: %d, available: %d)", stockErr.Name, stockErr.Requested, stockErr.Available),
					Err:     err,
				}
			case errors.Is(err, repositories.ErrProductNotFound):
				return nil, 0, &CheckoutError{
					Kind:    KindProductNotFound,
					Message: fmt.Sprintf("product %s no longer exists", item.ProductID),
					Err:     err,
				}
			default:
				return nil, 0, &CheckoutError{Kind: KindPersistenceFailure, Message: "could not reserve stock", Err: err}
			}
		}
		applied = append(applied, item)

		// The price charged is resolved here from the current catalog row,
		// never taken from the client.
		unitPrice := product.EffectivePrice()
		imageURL := ""
		if len(product.Images) > 0 {
			imageURL = product.Images[0].URL
		}
		resolved = append(resolved, models.OrderItem{
			ProductID:          product.ID,
			Name:               product.Name,
			UnitPrice:          unitPrice,
			Quantity:           item.Quantity,
			ImageURL:           imageURL,
			DiscountPercentage: product.DiscountPercentage,
		})
		total += unitPrice * float64(item.Quantity)
	}

	return resolved, total, nil
}

// releaseItems restores stock for fully resolved lines.
func (s *CheckoutService) releaseItems(products repositories.ProductRepository, items []models.OrderItem) {
	for _, item := range items {
		if err := products.IncrementStock(item.ProductID, item.Quantity); err != nil {
			s.logger.Error("failed to release reserved stock; reconciliation required",
				zap.String("product_id", item.ProductID),
				zap.Int("quantity", item.Quantity),
				zap.Error(err))
		}
	}
}

// releaseApplied restores stock for the lines decremented so far.
func (s *CheckoutService) releaseApplied(products repositories.ProductRepository, applied []CheckoutItemInput) {
	for _, item := range applied {
		if err := products.IncrementStock(item.ProductID, item.Quantity); err != nil {
			s.logger.Error("failed to release reserved stock; reconciliation required",
				zap.String("product_id", item.ProductID),
				zap.Int("quantity", item.Quantity),
				zap.Error(err))
		}
	}
}
