package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"brewshop/internal/models"
	"brewshop/internal/repository"

	"gorm.io/gorm"
)

type ShippingInput struct {
	CartID     uint
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Address    string
	City       string
	State      string
	PostalCode string
	Country    string
}

func (in *ShippingInput) validate() error {
	verr := &ValidationError{}
	required := map[string]string{
		"first_name":  in.FirstName,
		"last_name":   in.LastName,
		"email":       in.Email,
		"phone":       in.Phone,
		"address":     in.Address,
		"city":        in.City,
		"state":       in.State,
		"postal_code": in.PostalCode,
	}
	for field, value := range required {
		verr.Required(field, value)
	}
	verr.Email("email", strings.TrimSpace(in.Email))
	verr.Max("phone", strings.TrimSpace(in.Phone), 20)
	verr.Max("postal_code", strings.TrimSpace(in.PostalCode), 20)
	return verr.OrNil()
}

type ShippingService interface {
	CreateShipping(ctx context.Context, owner models.Owner, input ShippingInput) (*models.Shipping, error)
	GetByCart(ctx context.Context, owner models.Owner, cartID uint) (*models.Shipping, error)
	ListShipping(ctx context.Context, owner models.Owner) ([]models.Shipping, error)
}

type shippingService struct {
	db           *gorm.DB
	cartRepo     repository.CartRepository
	shippingRepo repository.ShippingRepository
}

func NewShippingService(db *gorm.DB, cartRepo repository.CartRepository, shippingRepo repository.ShippingRepository) ShippingService {
	return &shippingService{db: db, cartRepo: cartRepo, shippingRepo: shippingRepo}
}

// CreateShipping attaches the delivery address to one of the caller's open
// carts. A cart gets at most one address and it is never edited.
func (s *shippingService) CreateShipping(ctx context.Context, owner models.Owner, input ShippingInput) (*models.Shipping, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	country := strings.TrimSpace(input.Country)
	if country == "" {
		country = models.DefaultCountry
	}

	shipping := &models.Shipping{
		CartID:     input.CartID,
		FirstName:  strings.TrimSpace(input.FirstName),
		LastName:   strings.TrimSpace(input.LastName),
		Email:      strings.TrimSpace(input.Email),
		Phone:      strings.TrimSpace(input.Phone),
		Address:    strings.TrimSpace(input.Address),
		City:       strings.TrimSpace(input.City),
		State:      strings.TrimSpace(input.State),
		PostalCode: strings.TrimSpace(input.PostalCode),
		Country:    country,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.cartRepo.WithTx(tx).LockByID(ctx, input.CartID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %w", ErrInvalidReference, ErrCartNotFound)
			}
			return err
		}
		if cart.Owner() != owner {
			return fmt.Errorf("%w: %w", ErrInvalidReference, ErrCartNotFound)
		}
		if cart.IsOrderCreated {
			return ErrCartConsumed
		}

		repo := s.shippingRepo.WithTx(tx)
		if _, err := repo.GetByCartID(ctx, cart.ID); err == nil {
			return ErrShippingExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := repo.Create(ctx, shipping); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrShippingExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return shipping, nil
}

func (s *shippingService) GetByCart(ctx context.Context, owner models.Owner, cartID uint) (*models.Shipping, error) {
	cart, err := s.cartRepo.GetByID(ctx, cartID)
	if err != nil {
		return nil, translate(err, ErrShippingNotFound)
	}
	if cart.Owner() != owner {
		return nil, ErrShippingNotFound
	}
	shipping, err := s.shippingRepo.GetByCartID(ctx, cartID)
	if err != nil {
		return nil, translate(err, ErrShippingNotFound)
	}
	return shipping, nil
}

func (s *shippingService) ListShipping(ctx context.Context, owner models.Owner) ([]models.Shipping, error) {
	return s.shippingRepo.ListByOwner(ctx, owner)
}
