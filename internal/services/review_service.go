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

const maxReviewTextLength = 2000

type ReviewInput struct {
	ProductID  uint
	Rating     int
	ReviewText string
	Name       string
	Email      string
}

type ReviewService interface {
	Create(ctx context.Context, input ReviewInput) (*models.Review, error)
	Get(ctx context.Context, id uint) (*models.Review, error)
	List(ctx context.Context, productID *uint) ([]models.Review, error)
	AddPhoto(ctx context.Context, reviewID uint, image string) (*models.Review, error)
}

type reviewService struct {
	db          *gorm.DB
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
}

func NewReviewService(db *gorm.DB, reviewRepo repository.ReviewRepository, productRepo repository.ProductRepository) ReviewService {
	return &reviewService{db: db, reviewRepo: reviewRepo, productRepo: productRepo}
}

func (s *reviewService) Create(ctx context.Context, input ReviewInput) (*models.Review, error) {
	verr := &ValidationError{}
	if input.Rating < 1 || input.Rating > 5 {
		verr.Add("rating", "Ensure this value is between 1 and 5.")
	}
	verr.Max("review_text", input.ReviewText, maxReviewTextLength)
	if verr.Required("name", input.Name) {
		verr.Max("name", input.Name, 100)
	}
	verr.Email("email", strings.TrimSpace(input.Email))
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if _, err := s.productRepo.GetByID(ctx, input.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidReference, ErrProductNotFound)
		}
		return nil, err
	}

	review := &models.Review{
		ProductID:  input.ProductID,
		Rating:     input.Rating,
		ReviewText: input.ReviewText,
		Name:       strings.TrimSpace(input.Name),
		Email:      strings.TrimSpace(input.Email),
		Photos:     []models.ReviewPhoto{},
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	return review, nil
}

func (s *reviewService) Get(ctx context.Context, id uint) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, ErrReviewNotFound)
	}
	return review, nil
}

func (s *reviewService) List(ctx context.Context, productID *uint) ([]models.Review, error) {
	return s.reviewRepo.List(ctx, productID)
}

// AddPhoto attaches an already stored image. The review row is locked so
// two uploads cannot both pass the photo limit.
func (s *reviewService) AddPhoto(ctx context.Context, reviewID uint, image string) (*models.Review, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.reviewRepo.WithTx(tx)
		review, err := repo.LockByID(ctx, reviewID)
		if err != nil {
			return translate(err, ErrReviewNotFound)
		}
		count, err := repo.CountPhotos(ctx, review)
		if err != nil {
			return err
		}
		if count >= models.MaxReviewPhotos {
			return ErrTooManyPhotos
		}
		return repo.AddPhoto(ctx, review, &models.ReviewPhoto{Image: image})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, reviewID)
}
