package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/sellorama/sellorama/internal/domain"
	"github.com/sellorama/sellorama/internal/repository"
)

type addressService struct {
	repo repository.Querier
}

// NewAddressService creates a new AddressService instance
func NewAddressService(repo repository.Querier) domain.AddressService {
	return &addressService{repo: repo}
}

// CreateAddress records a new address for the authenticated user
func (s *addressService) CreateAddress(ctx context.Context, params domain.AddressParams) (*domain.Address, error) {
	const op = "AddressService.CreateAddress"

	identity, err := domain.RequireIdentity(ctx, op)
	if err != nil {
		return nil, err
	}

	if err := validate.Struct(params); err != nil {
		return nil, domain.Invalid(op, validationMessage(err))
	}

	address, err := s.repo.CreateAddress(ctx, repository.CreateAddressParams{
		UserID:     repository.UUIDFrom(identity.UserID),
		Line1:      params.Line1,
		Line2:      params.Line2,
		City:       params.City,
		PostalCode: params.PostalCode,
		Country:    params.Country,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create address")
	}

	return &address, nil
}

// ListAddresses returns the authenticated user's addresses
func (s *addressService) ListAddresses(ctx context.Context) ([]domain.Address, error) {
	const op = "AddressService.ListAddresses"

	identity, err := domain.RequireIdentity(ctx, op)
	if err != nil {
		return nil, err
	}

	addresses, err := s.repo.ListAddresses(ctx, repository.UUIDFrom(identity.UserID))
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.Internal(err, op, "failed to list addresses")
	}

	return addresses, nil
}
