package service

import (
	"errors"

	"github.com/google/uuid"
	"github.com/malvarez-dev/tienda-backend/internal/app/model"
	"github.com/malvarez-dev/tienda-backend/internal/app/repository"
	"github.com/malvarez-dev/tienda-backend/pkg/logger"
	"gorm.io/gorm"
)

type AddressInput struct {
	StreetAddress string
	Apartment     string
	City          string
	State         string
	PostalCode    string
	Country       string
	AddressType   string
	IsDefault     bool
}

type AddressService interface {
	ListAddresses(userID uuid.UUID) ([]model.Address, error)
	CreateAddress(userID uuid.UUID, input AddressInput) (*model.Address, error)
	UpdateAddress(userID, addressID uuid.UUID, input AddressInput) (*model.Address, error)
	DeleteAddress(userID, addressID uuid.UUID) error
}

type addressService struct {
	addressRepo repository.AddressRepository
}

func NewAddressService(addressRepo repository.AddressRepository) AddressService {
	return &addressService{addressRepo: addressRepo}
}

func (s *addressService) ListAddresses(userID uuid.UUID) ([]model.Address, error) {
	logger.Debug("Listing user addresses", map[string]interface{}{
		"user_id": userID,
	})
	return s.addressRepo.FindByUserID(userID)
}

func (s *addressService) CreateAddress(userID uuid.UUID, input AddressInput) (*model.Address, error) {
	logger.Info("Creating address", map[string]interface{}{
		"user_id": userID,
		"city":    input.City,
	})

	addressType := input.AddressType
	if addressType == "" {
		addressType = "shipping"
	}
	country := input.Country
	if country == "" {
		country = "Argentina"
	}

	if input.IsDefault {
		if err := s.addressRepo.ClearDefault(userID, addressType); err != nil {
			return nil, err
		}
	}

	address := &model.Address{
		UserID:        userID,
		StreetAddress: input.StreetAddress,
		Apartment:     input.Apartment,
		City:          input.City,
		State:         input.State,
		PostalCode:    input.PostalCode,
		Country:       country,
		AddressType:   addressType,
		IsDefault:     input.IsDefault,
	}
	if err := s.addressRepo.Create(address); err != nil {
		logger.Error("Failed to create address", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return address, nil
}

func (s *addressService) findOwned(userID, addressID uuid.UUID) (*model.Address, error) {
	address, err := s.addressRepo.FindByID(addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}
	if address.UserID != userID {
		logger.Warn("Address access denied: ownership mismatch", map[string]interface{}{
			"user_id":    userID,
			"address_id": addressID,
		})
		return nil, ErrAddressNotFound
	}
	return address, nil
}

func (s *addressService) UpdateAddress(userID, addressID uuid.UUID, input AddressInput) (*model.Address, error) {
	logger.Info("Updating address", map[string]interface{}{
		"user_id":    userID,
		"address_id": addressID,
	})

	address, err := s.findOwned(userID, addressID)
	if err != nil {
		return nil, err
	}

	if input.StreetAddress != "" {
		address.StreetAddress = input.StreetAddress
	}
	address.Apartment = input.Apartment
	if input.City != "" {
		address.City = input.City
	}
	if input.State != "" {
		address.State = input.State
	}
	if input.PostalCode != "" {
		address.PostalCode = input.PostalCode
	}
	if input.Country != "" {
		address.Country = input.Country
	}
	if input.AddressType != "" {
		address.AddressType = input.AddressType
	}

	if input.IsDefault && !address.IsDefault {
		if err := s.addressRepo.ClearDefault(userID, address.AddressType); err != nil {
			return nil, err
		}
		address.IsDefault = true
	}

	if err := s.addressRepo.Update(address); err != nil {
		return nil, err
	}
	return address, nil
}

func (s *addressService) DeleteAddress(userID, addressID uuid.UUID) error {
	logger.Info("Deleting address", map[string]interface{}{
		"user_id":    userID,
		"address_id": addressID,
	})

	address, err := s.findOwned(userID, addressID)
	if err != nil {
		return err
	}
	return s.addressRepo.Delete(address.ID)
}
