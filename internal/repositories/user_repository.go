package repositories

import "gadup/internal/models"

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	UpdatePassword(id string, hashedPassword string) error

	// Address book operations, driven by the action-tagged upsert endpoint.
	AddAddress(userID string, address *models.Address) error
	UpdateAddress(userID string, address *models.Address) error
	DeleteAddress(userID string, addressID string) error
	ListAddresses(userID string) ([]models.Address, error)
}
