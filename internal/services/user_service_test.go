package services_test

import (
	"testing"

	"gadup/internal/models"
	"gadup/internal/repositories"
	"gadup/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserService_GetProfile(t *testing.T) {
	mockRepo := new(MockUserRepository)
	orderRepo := repositories.NewMockOrderRepository()
	service := services.NewUserService(mockRepo, orderRepo)

	stored := &models.User{
		ID:       "user-1",
		Name:     "Ada Obi",
		Email:    "ada@example.com",
		Password: "some-hash",
		Addresses: []models.Address{
			{ID: "addr-1", Label: "Home", Line1: "12 Marina Road", City: "Lagos", State: "Lagos", PostalCode: "100001", Country: "Nigeria"},
		},
	}
	mockRepo.On("GetByID", "user-1").Return(stored, nil).Once()

	require.NoError(t, orderRepo.Create(&models.Order{
		UserID: "user-1", Reference: "ref-1", Status: models.OrderStatusPaid, Total: 100,
	}))
	require.NoError(t, orderRepo.Create(&models.Order{
		UserID: "user-2", Reference: "ref-2", Status: models.OrderStatusPaid, Total: 50,
	}))

	profile, err := service.GetProfile("user-1")

	require.NoError(t, err)
	assert.Equal(t, "Ada Obi", profile.Name)
	assert.Empty(t, profile.Password, "profile must never carry the password hash")
	assert.Len(t, profile.Addresses, 1)
	require.Len(t, profile.Orders, 1)
	assert.Equal(t, "ref-1", profile.Orders[0].Reference)
}

func TestUserService_UpdateAddress_Add(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo, repositories.NewMockOrderRepository())

	address := models.Address{Label: "Work", Line1: "1 Broad Street", City: "Lagos", State: "Lagos", PostalCode: "100001", Country: "Nigeria"}
	updated := []models.Address{address}

	mockRepo.On("AddAddress", "user-1", mock.AnythingOfType("*models.Address")).Return(nil).Once()
	mockRepo.On("ListAddresses", "user-1").Return(updated, nil).Once()

	addresses, err := service.UpdateAddress("user-1", services.AddressActionAdd, address)

	require.NoError(t, err)
	assert.Len(t, addresses, 1)
	mockRepo.AssertExpectations(t)
}

func TestUserService_UpdateAddress_Edit(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo, repositories.NewMockOrderRepository())

	address := models.Address{ID: "addr-1", Label: "Home", Line1: "14 Marina Road", City: "Lagos", State: "Lagos", PostalCode: "100001", Country: "Nigeria"}

	mockRepo.On("UpdateAddress", "user-1", mock.AnythingOfType("*models.Address")).Return(nil).Once()
	mockRepo.On("ListAddresses", "user-1").Return([]models.Address{address}, nil).Once()

	addresses, err := service.UpdateAddress("user-1", services.AddressActionEdit, address)

	require.NoError(t, err)
	assert.Equal(t, "14 Marina Road", addresses[0].Line1)
}

func TestUserService_UpdateAddress_EditRequiresID(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo, repositories.NewMockOrderRepository())

	_, err := service.UpdateAddress("user-1", services.AddressActionEdit, models.Address{Label: "Home"})

	assert.ErrorIs(t, err, services.ErrInvalidAddressAction)
	mockRepo.AssertNotCalled(t, "UpdateAddress", mock.Anything, mock.Anything)
}

func TestUserService_UpdateAddress_Delete(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo, repositories.NewMockOrderRepository())

	mockRepo.On("DeleteAddress", "user-1", "addr-1").Return(nil).Once()
	mockRepo.On("ListAddresses", "user-1").Return([]models.Address{}, nil).Once()

	addresses, err := service.UpdateAddress("user-1", services.AddressActionDelete, models.Address{ID: "addr-1"})

	require.NoError(t, err)
	assert.Empty(t, addresses)
	mockRepo.AssertExpectations(t)
}

func TestUserService_UpdateAddress_InvalidAction(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo, repositories.NewMockOrderRepository())

	_, err := service.UpdateAddress("user-1", "replace", models.Address{})

	assert.ErrorIs(t, err, services.ErrInvalidAddressAction)
}
