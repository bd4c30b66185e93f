package handlers

import (
	"log"

	"gadup/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CheckoutHandler exposes the settlement endpoint.
type CheckoutHandler struct {
	service  *services.CheckoutService
	validate *validator.Validate
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(service *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the checkout route. Requires auth.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/checkout", h.HandleCheckout)
}

// HandleCheckout settles a payment reference into an order. The response is
// either {order} or {kind, message}; each failure kind keeps its own status
// code so the client can tell payment rejection, stock shortage, and
// internal failure apart.
func (h *CheckoutHandler) HandleCheckout(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"kind":    "AUTH_REQUIRED",
			"message": "Authentication required",
		})
	}

	var input services.CheckoutInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"kind":    "VALIDATION_ERROR",
			"message": "Invalid request body",
		})
	}
	if err := h.validate.Struct(input); err != nil {
		return validationResponse(c, err)
	}
	// A saved-address checkout carries only the ID; an inline address must be
	// complete.
	if input.AddressID == "" {
		if err := h.validate.Struct(input.Address); err != nil {
			return validationResponse(c, err)
		}
	}

	order, err := h.service.Settle(c.Context(), userID, input)
	if err != nil {
		checkoutErr, ok := services.AsCheckoutError(err)
		if !ok {
			log.Printf("Unclassified checkout error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"kind":    "INTERNAL_ERROR",
				"message": "Could not settle order",
			})
		}
		return c.Status(checkoutStatusCode(checkoutErr.Kind)).JSON(fiber.Map{
			"kind":    string(checkoutErr.Kind),
			"message": checkoutErr.Message,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"order": order})
}

// checkoutStatusCode maps settlement failure kinds to HTTP status codes.
func checkoutStatusCode(kind services.ErrorKind) int {
	switch kind {
	case services.KindValidation:
		return fiber.StatusBadRequest
	case services.KindPaymentRejected:
		return fiber.StatusPaymentRequired
	case services.KindProductNotFound, services.KindInsufficientStock:
		return fiber.StatusConflict
	case services.KindProviderUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
