package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/zhli-dev/meiduo-backend/internal/domain"
	"github.com/zhli-dev/meiduo-backend/internal/repository/ports"
)

// maxAddressesPerUser caps the address book.
const maxAddressesPerUser = 20

type AddressService struct {
	addresses ports.AddressRepository
	users     ports.UserRepository
}

func NewAddressService(addresses ports.AddressRepository, users ports.UserRepository) *AddressService {
	return &AddressService{addresses: addresses, users: users}
}

func (s *AddressService) Create(ctx context.Context, userID int64, addr *domain.Address) (*domain.Address, error) {
	if !mobilePattern.MatchString(addr.Mobile) {
		return nil, ErrInvalidMobile
	}
	count, err := s.addresses.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if count >= maxAddressesPerUser {
		return nil, ErrAddressLimit
	}
	addr.UserID = userID
	return s.addresses.Create(ctx, addr)
}

func (s *AddressService) List(ctx context.Context, userID int64) ([]domain.Address, int64, error) {
	addrs, err := s.addresses.ListByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	var defaultID int64
	if user.DefaultAddressID != nil {
		defaultID = *user.DefaultAddressID
	}
	return addrs, defaultID, nil
}

func (s *AddressService) Update(ctx context.Context, userID int64, addr *domain.Address) (*domain.Address, error) {
	if !mobilePattern.MatchString(addr.Mobile) {
		return nil, ErrInvalidMobile
	}
	addr.UserID = userID
	updated, err := s.addresses.Update(ctx, addr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAddressNotFound
	}
	return updated, err
}

func (s *AddressService) UpdateTitle(ctx context.Context, userID, addressID int64, title string) error {
	if _, err := s.addresses.FindByID(ctx, userID, addressID); errors.Is(err, sql.ErrNoRows) {
		return ErrAddressNotFound
	} else if err != nil {
		return err
	}
	return s.addresses.UpdateTitle(ctx, userID, addressID, title)
}

func (s *AddressService) Delete(ctx context.Context, userID, addressID int64) error {
	if _, err := s.addresses.FindByID(ctx, userID, addressID); errors.Is(err, sql.ErrNoRows) {
		return ErrAddressNotFound
	} else if err != nil {
		return err
	}
	return s.addresses.SoftDelete(ctx, userID, addressID)
}

// SetDefault marks one of the user's addresses as the shipping default.
func (s *AddressService) SetDefault(ctx context.Context, userID, addressID int64) error {
	if _, err := s.addresses.FindByID(ctx, userID, addressID); errors.Is(err, sql.ErrNoRows) {
		return ErrAddressNotFound
	} else if err != nil {
		return err
	}
	return s.users.SetDefaultAddress(ctx, userID, addressID)
}
