package handlers

import (
	"errors"
	"fmt"
	"log"

	"gadup/internal/repositories"
	"gadup/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles the admin order routes: listing, status advancement,
// and revenue stats.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/stats/income", h.HandleIncomeStats)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Patch("/:id/status", h.HandleUpdateOrderStatus)
}

// HandleGetOrders retrieves all orders, newest first.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetAllOrders()
	if err != nil {
		log.Printf("Error getting all orders: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"kind":    "INTERNAL_ERROR",
			"message": "Could not retrieve orders",
		})
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	orderID := c.Params("id")
	order, err := h.service.GetOrderByID(orderID)
	if err != nil {
		log.Printf("Error getting order by ID %s: %v", orderID, err)
		if errors.Is(err, repositories.ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"kind":    "NOT_FOUND",
				"message": fmt.Sprintf("Order with ID %s not found", orderID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"kind":    "INTERNAL_ERROR",
			"message": "Could not retrieve order",
		})
	}
	return c.JSON(order)
}

// HandleUpdateOrderStatus advances the status of an existing order.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var updateData struct {
		Status string `json:"status"`
	}

	if err := c.BodyParser(&updateData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"kind":    "VALIDATION_ERROR",
			"message": "Invalid request body for status update",
		})
	}

	if updateData.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"kind":    "VALIDATION_ERROR",
			"message": "Status is required for order status update",
		})
	}

	if err := h.service.UpdateOrderStatus(orderID, updateData.Status); err != nil {
		log.Printf("Error updating order status for order %s: %v", orderID, err)
		switch {
		case errors.Is(err, services.ErrInvalidOrderStatus):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"kind":    "VALIDATION_ERROR",
				"message": fmt.Sprintf("Invalid order status: %s", updateData.Status),
			})
		case errors.Is(err, repositories.ErrOrderNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"kind":    "NOT_FOUND",
				"message": fmt.Sprintf("Order with ID %s not found", orderID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"kind":    "INTERNAL_ERROR",
			"message": "Could not update order status",
		})
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Order %s status updated successfully to %s", orderID, updateData.Status),
	})
}

// HandleIncomeStats reports paid-order revenue over rolling windows.
func (h *OrderHandler) HandleIncomeStats(c *fiber.Ctx) error {
	stats, err := h.service.IncomeStats()
	if err != nil {
		log.Printf("Error aggregating income stats: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"kind":    "INTERNAL_ERROR",
			"message": "Could not aggregate income stats",
		})
	}
	return c.JSON(stats)
}
