package service

import (
	"context"
	"database/sql"
	"strings"

	"go.uber.org/zap"

	"bloom/internal/domain"
	apperrors "bloom/internal/errors"
)

type TransactionManager interface {
	WithinTx(ctx context.Context, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error
}

type AddressRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]domain.Address, error)
	FindForUser(ctx context.Context, id, userID int64) (*domain.Address, error)
	LockOwner(ctx context.Context, tx *sql.Tx, userID int64) error
	CountByUser(ctx context.Context, tx *sql.Tx, userID int64) (int, error)
	Create(ctx context.Context, tx *sql.Tx, a *domain.Address) error
	Update(ctx context.Context, tx *sql.Tx, a *domain.Address) error
	Delete(ctx context.Context, tx *sql.Tx, id, userID int64) error
	ClearDefault(ctx context.Context, tx *sql.Tx, userID, keepID int64) error
	PromoteOldest(ctx context.Context, tx *sql.Tx, userID int64) error
}

type AddressService struct {
	txManager TransactionManager
	addresses AddressRepository
	logger    *zap.Logger
}

func NewAddressService(txManager TransactionManager, addresses AddressRepository, logger *zap.Logger) *AddressService {
	return &AddressService{txManager: txManager, addresses: addresses, logger: logger}
}

func (s *AddressService) List(ctx context.Context, userID int64) ([]domain.Address, error) {
	return s.addresses.ListByUser(ctx, userID)
}

func (s *AddressService) Get(ctx context.Context, userID, id int64) (*domain.Address, error) {
	return s.addresses.FindForUser(ctx, id, userID)
}

// Create stores a new address. The first address of a user always becomes
// the default; marking one as default clears the flag on the others.
func (s *AddressService) Create(ctx context.Context, userID int64, a domain.Address) (*domain.Address, error) {
	a = trimAddress(a)
	if err := ValidateAddress(a); err != nil {
		return nil, err
	}
	a.UserID = userID

	err := s.txManager.WithinTx(ctx, nil, func(tx *sql.Tx) error {
		if err := s.addresses.LockOwner(ctx, tx, userID); err != nil {
			return err
		}
		n, err := s.addresses.CountByUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		if n == 0 {
			a.IsDefault = true
		}
		if err := s.addresses.Create(ctx, tx, &a); err != nil {
			return err
		}
		if a.IsDefault {
			return s.addresses.ClearDefault(ctx, tx, userID, a.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("address created", zap.Int64("userId", userID), zap.Int64("addressId", a.ID))
	return s.addresses.FindForUser(ctx, a.ID, userID)
}

func (s *AddressService) Update(ctx context.Context, userID, id int64, a domain.Address) (*domain.Address, error) {
	a = trimAddress(a)
	if err := ValidateAddress(a); err != nil {
		return nil, err
	}

	current, err := s.addresses.FindForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	a.ID = id
	a.UserID = userID
	// The only way to move the default is to mark another address.
	if current.IsDefault {
		a.IsDefault = true
	}

	err = s.txManager.WithinTx(ctx, nil, func(tx *sql.Tx) error {
		if err := s.addresses.LockOwner(ctx, tx, userID); err != nil {
			return err
		}
		if err := s.addresses.Update(ctx, tx, &a); err != nil {
			return err
		}
		if a.IsDefault {
			return s.addresses.ClearDefault(ctx, tx, userID, a.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.addresses.FindForUser(ctx, id, userID)
}

// Delete removes an address. Removing the default promotes the oldest remaining one.
func (s *AddressService) Delete(ctx context.Context, userID, id int64) error {
	current, err := s.addresses.FindForUser(ctx, id, userID)
	if err != nil {
		return err
	}

	return s.txManager.WithinTx(ctx, nil, func(tx *sql.Tx) error {
		if err := s.addresses.LockOwner(ctx, tx, userID); err != nil {
			return err
		}
		if err := s.addresses.Delete(ctx, tx, id, userID); err != nil {
			return err
		}
		if current.IsDefault {
			return s.addresses.PromoteOldest(ctx, tx, userID)
		}
		return nil
	})
}

func trimAddress(a domain.Address) domain.Address {
	a.Label = strings.TrimSpace(a.Label)
	a.RecipientName = strings.TrimSpace(a.RecipientName)
	a.Phone = strings.TrimSpace(a.Phone)
	a.Street = strings.TrimSpace(a.Street)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.PostalCode = strings.TrimSpace(a.PostalCode)
	return a
}

// ValidateAddress checks the fields needed to deliver to an address.
func ValidateAddress(a domain.Address) error {
	var details []apperrors.ValidationDetail
	required := []struct {
		field, value string
	}{
		{"recipientName", a.RecipientName},
		{"phone", a.Phone},
		{"street", a.Street},
		{"city", a.City},
		{"postalCode", a.PostalCode},
	}
	for _, r := range required {
		if r.value == "" {
			details = append(details, apperrors.ValidationDetail{Field: r.field, Message: r.field + " is required"})
		}
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}
