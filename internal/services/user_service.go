package services

import (
	"errors"
	"fmt"

	"gadup/internal/models"
	"gadup/internal/repositories"
)

// ErrInvalidAddressAction rejects an address update whose action tag is not
// add, edit, or delete.
var ErrInvalidAddressAction = errors.New("invalid address action")

// Address update action tags, matching the client's upsert contract.
const (
	AddressActionAdd    = "add"
	AddressActionEdit   = "edit"
	AddressActionDelete = "delete"
)

// Profile is a user's account view: the user record (password stripped) plus
// their order history, newest first.
type Profile struct {
	models.User
	Orders []models.Order `json:"orders"`
}

// UserService handles account profile and address book logic.
type UserService struct {
	userRepo  repositories.UserRepository
	orderRepo repositories.OrderRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository, orderRepo repositories.OrderRepository) *UserService {
	return &UserService{
		userRepo:  userRepo,
		orderRepo: orderRepo,
	}
}

// GetProfile returns the user and their orders.
func (s *UserService) GetProfile(userID string) (*Profile, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	orders, err := s.orderRepo.GetByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	profile := &Profile{User: *user, Orders: orders}
	profile.Password = "" // Never expose the hash
	return profile, nil
}

// UpdateAddress applies one action-tagged change to the user's address book
// and returns the resulting list. Edit and delete require the address ID.
func (s *UserService) UpdateAddress(userID, action string, address models.Address) ([]models.Address, error) {
	switch action {
	case AddressActionAdd:
		if err := s.userRepo.AddAddress(userID, &address); err != nil {
			return nil, err
		}
	case AddressActionEdit:
		if address.ID == "" {
			return nil, fmt.Errorf("%w: address ID required for edit", ErrInvalidAddressAction)
		}
		if err := s.userRepo.UpdateAddress(userID, &address); err != nil {
			return nil, err
		}
	case AddressActionDelete:
		if address.ID == "" {
			return nil, fmt.Errorf("%w: address ID required for delete", ErrInvalidAddressAction)
		}
		if err := s.userRepo.DeleteAddress(userID, address.ID); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidAddressAction, action)
	}

	return s.userRepo.ListAddresses(userID)
}
