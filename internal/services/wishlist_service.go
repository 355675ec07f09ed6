package services

import (
	"context"
	"errors"

	"brewshop/internal/models"
	"brewshop/internal/repository"

	"gorm.io/gorm"
)

type WishlistService interface {
	Get(ctx context.Context, owner models.Owner) (*models.Wishlist, error)
	AddProduct(ctx context.Context, owner models.Owner, productID uint) (*models.Wishlist, error)
}

type wishlistService struct {
	wishlistRepo repository.WishlistRepository
	productRepo  repository.ProductRepository
}

func NewWishlistService(wishlistRepo repository.WishlistRepository, productRepo repository.ProductRepository) WishlistService {
	return &wishlistService{wishlistRepo: wishlistRepo, productRepo: productRepo}
}

// Get returns the owner's wishlist, or an empty unsaved one.
func (s *wishlistService) Get(ctx context.Context, owner models.Owner) (*models.Wishlist, error) {
	wishlist, err := s.wishlistRepo.FindByOwner(ctx, owner)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		wishlist = models.NewWishlist(owner)
		wishlist.Products = []models.Product{}
		return wishlist, nil
	}
	return wishlist, err
}

func (s *wishlistService) getOrCreate(ctx context.Context, owner models.Owner) (*models.Wishlist, error) {
	wishlist, err := s.wishlistRepo.FindByOwner(ctx, owner)
	if err == nil {
		return wishlist, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	wishlist = models.NewWishlist(owner)
	err = s.wishlistRepo.Create(ctx, wishlist)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return s.wishlistRepo.FindByOwner(ctx, owner)
	}
	return wishlist, err
}

func (s *wishlistService) AddProduct(ctx context.Context, owner models.Owner, productID uint) (*models.Wishlist, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, translate(err, ErrProductNotFound)
	}

	wishlist, err := s.getOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := s.wishlistRepo.AddProduct(ctx, wishlist, product); err != nil {
		return nil, err
	}
	return s.wishlistRepo.FindByOwner(ctx, owner)
}
