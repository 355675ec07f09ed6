package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"brewshop/internal/models"
	"brewshop/internal/redis"
	"brewshop/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	DefaultPageSize    = 100
	categoriesCacheKey = "catalog:categories"
	categoriesCacheTTL = 30 * time.Minute
)

// Cache is the subset of the redis client used for read-through caching.
type Cache interface {
	SetTempData(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	GetTempData(ctx context.Context, key string, dest interface{}) error
	DeleteTempData(ctx context.Context, key string) error
}

type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	CategoryID  uint
	Stock       int
	StockStatus *bool
	Featured    bool
	Image       string
}

type CatalogService interface {
	ListProducts(ctx context.Context, filter repository.ProductFilter) ([]models.Product, int64, error)
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error)
	ListCategories(ctx context.Context) ([]models.ProductCategory, error)
	CreateCategory(ctx context.Context, category *models.ProductCategory) error
	ListStores(ctx context.Context) ([]models.Store, error)
}

type catalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	storeRepo    repository.StoreRepository
	cache        Cache
}

func NewCatalogService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	storeRepo repository.StoreRepository,
	cache Cache,
) CatalogService {
	return &catalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		storeRepo:    storeRepo,
		cache:        cache,
	}
}

func (s *catalogService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]models.Product, int64, error) {
	if filter.Page.Limit <= 0 {
		filter.Page.Limit = DefaultPageSize
	}
	return s.productRepo.List(ctx, filter)
}

func (s *catalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, ErrProductNotFound)
	}
	return product, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error) {
	verr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		verr.Add("name", "This field is required.")
	}
	if !input.Price.IsPositive() {
		verr.Add("price", "Price must be greater than 0.")
	}
	if input.Stock < 0 {
		verr.Add("stock", "Stock cannot be negative.")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if _, err := s.categoryRepo.GetByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidReference, ErrCategoryNotFound)
		}
		return nil, err
	}

	stockStatus := true
	if input.StockStatus != nil {
		stockStatus = *input.StockStatus
	}

	product := &models.Product{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       input.Price.Round(2),
		CategoryID:  input.CategoryID,
		Stock:       input.Stock,
		StockStatus: stockStatus,
		Featured:    input.Featured,
		Image:       input.Image,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.invalidateCategories(ctx)

	return s.productRepo.GetByID(ctx, product.ID)
}

func (s *catalogService) ListCategories(ctx context.Context) ([]models.ProductCategory, error) {
	var categories []models.ProductCategory
	if s.cache != nil {
		err := s.cache.GetTempData(ctx, categoriesCacheKey, &categories)
		if err == nil {
			return categories, nil
		}
		if !errors.Is(err, redis.ErrCacheMiss) {
			log.Printf("Warning: category cache read failed: %v", err)
		}
	}

	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetTempData(ctx, categoriesCacheKey, categories, categoriesCacheTTL); err != nil {
			log.Printf("Warning: category cache write failed: %v", err)
		}
	}
	return categories, nil
}

func (s *catalogService) CreateCategory(ctx context.Context, category *models.ProductCategory) error {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return &ValidationError{Fields: map[string]string{"name": "This field is required."}}
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &ValidationError{Fields: map[string]string{"name": "product category with this name already exists."}}
		}
		return err
	}
	s.invalidateCategories(ctx)
	return nil
}

func (s *catalogService) invalidateCategories(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteTempData(ctx, categoriesCacheKey); err != nil {
		log.Printf("Warning: category cache invalidation failed: %v", err)
	}
}

func (s *catalogService) ListStores(ctx context.Context) ([]models.Store, error) {
	return s.storeRepo.List(ctx)
}
