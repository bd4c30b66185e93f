package repositories

import (
	"errors"
	"fmt"

	"gadup/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByEmail retrieves a user by their email, address book included.
func (r *GORMUserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Preload("Addresses").First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with email %s: %w", email, ErrUserNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, err)
	}
	return &user, nil
}

// GetByID retrieves a user by their ID, address book included.
func (r *GORMUserRepository) GetByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.Preload("Addresses").First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with ID %s: %w", id, ErrUserNotFound)
		}
		return nil, fmt.Errorf("failed to get user by ID %s: %w", id, err)
	}
	return &user, nil
}

// UpdatePassword replaces the stored password hash.
func (r *GORMUserRepository) UpdatePassword(id string, hashedPassword string) error {
	res := r.db.Model(&models.User{}).Where("id = ?", id).Update("password", hashedPassword)
	if res.Error != nil {
		return fmt.Errorf("failed to update password for user %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %s: %w", id, ErrUserNotFound)
	}
	return nil
}

// AddAddress appends a new entry to the user's address book.
func (r *GORMUserRepository) AddAddress(userID string, address *models.Address) error {
	if address.ID == "" {
		address.ID = uuid.New().String()
	}
	address.UserID = userID
	if err := r.db.Create(address).Error; err != nil {
		return fmt.Errorf("failed to add address for user %s: %w", userID, err)
	}
	return nil
}

// UpdateAddress rewrites an existing address book entry. The user scope in
// the WHERE clause stops one user editing another's address.
func (r *GORMUserRepository) UpdateAddress(userID string, address *models.Address) error {
	address.UserID = userID
	res := r.db.Model(&models.Address{}).
		Where("id = ? AND user_id = ?", address.ID, userID).
		Updates(map[string]interface{}{
			"label":       address.Label,
			"line1":       address.Line1,
			"line2":       address.Line2,
			"city":        address.City,
			"state":       address.State,
			"postal_code": address.PostalCode,
			"country":     address.Country,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update address %s: %w", address.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("address with ID %s: %w", address.ID, ErrAddressNotFound)
	}
	return nil
}

// DeleteAddress removes an address book entry.
func (r *GORMUserRepository) DeleteAddress(userID string, addressID string) error {
	res := r.db.Delete(&models.Address{}, "id = ? AND user_id = ?", addressID, userID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete address %s: %w", addressID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("address with ID %s: %w", addressID, ErrAddressNotFound)
	}
	return nil
}

// ListAddresses returns the user's address book.
func (r *GORMUserRepository) ListAddresses(userID string) ([]models.Address, error) {
	var addresses []models.Address
	if err := r.db.Where("user_id = ?", userID).Find(&addresses).Error; err != nil {
		return nil, fmt.Errorf("failed to list addresses for user %s: %w", userID, err)
	}
	return addresses, nil
}
