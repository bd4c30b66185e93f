package handlers

import (
	"errors"
	"log"

	"gadup/internal/models"
	"gadup/internal/repositories"
	"gadup/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for the account profile and address book.
type UserHandler struct {
	userService *services.UserService
	authService *services.AuthService
	validate    *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService, authService *services.AuthService) *UserHandler {
	return &UserHandler{
		userService: userService,
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the user routes. All of them require auth.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Get("/profile", h.HandleGetProfile)
	userRoutes.Put("/address", h.HandleUpdateAddress)
	userRoutes.Put("/password", h.HandleChangePassword)
}

// HandleGetProfile returns the user record plus their order history.
func (h *UserHandler) HandleGetProfile(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	profile, err := h.userService.GetProfile(userID)
	if err != nil {
		log.Printf("Error loading profile for user %s: %v", userID, err)
		if errors.Is(err, repositories.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"kind":    "NOT_FOUND",
				"message": "User not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"kind":    "INTERNAL_ERROR",
			"message": "Could not load profile",
		})
	}
	return c.JSON(profile)
}

// AddressUpdateRequest is the action-tagged address book upsert. The nested
// address is excluded from request-level validation because delete carries
// only the ID; add and edit validate the full address explicitly below.
type AddressUpdateRequest struct {
	Action  string         `json:"action" validate:"required,oneof=add edit delete"`
	Address models.Address `json:"address" validate:"-"`
}

// HandleUpdateAddress applies one add/edit/delete action to the address book
// and returns the resulting list.
func (h *UserHandler) HandleUpdateAddress(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var req AddressUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"kind":    "VALIDATION_ERROR",
			"message": "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationResponse(c, err)
	}
	// Deleting only needs the ID; add and edit need the full address.
	if req.Action != services.AddressActionDelete {
		if err := h.validate.Struct(req.Address); err != nil {
			return validationResponse(c, err)
		}
	}

	addresses, err := h.userService.UpdateAddress(userID, req.Action, req.Address)
	if err != nil {
		log.Printf("Error updating address for user %s: %v", userID, err)
		switch {
		case errors.Is(err, services.ErrInvalidAddressAction):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"kind":    "VALIDATION_ERROR",
				"message": err.Error(),
			})
		case errors.Is(err, repositories.ErrAddressNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"kind":    "NOT_FOUND",
				"message": "Address not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"kind":    "INTERNAL_ERROR",
			"message": "Could not update address",
		})
	}

	return c.JSON(fiber.Map{
		"message":   "Address updated successfully",
		"addresses": addresses,
	})
}

// ChangePasswordRequest represents the password change body.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

// HandleChangePassword verifies the current password and stores a new hash.
func (h *UserHandler) HandleChangePassword(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"kind":    "VALIDATION_ERROR",
			"message": "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationResponse(c, err)
	}

	if err := h.authService.ChangePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		log.Printf("Error changing password for user %s: %v", userID, err)
		if errors.Is(err, services.ErrWrongPassword) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"kind":    "VALIDATION_ERROR",
				"message": "Current password is incorrect",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"kind":    "INTERNAL_ERROR",
			"message": "Could not update password",
		})
	}

	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}
