package repository

import (
	"context"

	"brewshop/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id uint) (*models.Review, error)
	LockByID(ctx context.Context, id uint) (*models.Review, error)
	List(ctx context.Context, productID *uint) ([]models.Review, error)
	CountPhotos(ctx context.Context, review *models.Review) (int64, error)
	AddPhoto(ctx context.Context, review *models.Review, photo *models.ReviewPhoto) error
	WithTx(tx *gorm.DB) ReviewRepository
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) WithTx(tx *gorm.DB) ReviewRepository {
	return &reviewRepository{db: tx}
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(review).Error
}

func (r *reviewRepository) GetByID(ctx context.Context, id uint) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).Preload("Photos").First(&review, id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) LockByID(ctx context.Context, id uint) (*models.Review, error) {
	var review models.Review
	if err := lockForUpdate(r.db.WithContext(ctx)).First(&review, id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) List(ctx context.Context, productID *uint) ([]models.Review, error) {
	query := r.db.WithContext(ctx).Preload("Photos")
	if productID != nil {
		query = query.Where("product_id = ?", *productID)
	}
	var reviews []models.Review
	err := query.Order("created_at DESC").Find(&reviews).Error
	return reviews, err
}

func (r *reviewRepository) CountPhotos(ctx context.Context, review *models.Review) (int64, error) {
	assoc := r.db.WithContext(ctx).Model(review).Association("Photos")
	if assoc.Error != nil {
		return 0, assoc.Error
	}
	count := assoc.Count()
	return count, assoc.Error
}

func (r *reviewRepository) AddPhoto(ctx context.Context, review *models.Review, photo *models.ReviewPhoto) error {
	db := r.db.WithContext(ctx)
	if err := db.Create(photo).Error; err != nil {
		return err
	}
	return db.Model(review).Association("Photos").Append(photo)
}

type WishlistRepository interface {
	FindByOwner(ctx context.Context, owner models.Owner) (*models.Wishlist, error)
	Create(ctx context.Context, wishlist *models.Wishlist) error
	AddProduct(ctx context.Context, wishlist *models.Wishlist, product *models.Product) error
}

type wishlistRepository struct {
	db *gorm.DB
}

func NewWishlistRepository(db *gorm.DB) WishlistRepository {
	return &wishlistRepository{db: db}
}

func (r *wishlistRepository) FindByOwner(ctx context.Context, owner models.Owner) (*models.Wishlist, error) {
	var wishlist models.Wishlist
	err := r.db.WithContext(ctx).
		Preload("Products").
		Preload("Products.Category").
		Where("owner_kind = ? AND owner_key = ?", owner.Kind, owner.Key).
		First(&wishlist).Error
	if err != nil {
		return nil, err
	}
	return &wishlist, nil
}

func (r *wishlistRepository) Create(ctx context.Context, wishlist *models.Wishlist) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(wishlist).Error
}

// AddProduct is idempotent: the join row is only written once.
func (r *wishlistRepository) AddProduct(ctx context.Context, wishlist *models.Wishlist, product *models.Product) error {
	return r.db.WithContext(ctx).Model(wishlist).Omit("Products.*").Association("Products").Append(product)
}

type SignupRepository interface {
	CreateBeerClubMember(ctx context.Context, member *models.BeerClubMember) error
	CreateContactMessage(ctx context.Context, message *models.ContactMessage) error
}

type signupRepository struct {
	db *gorm.DB
}

func NewSignupRepository(db *gorm.DB) SignupRepository {
	return &signupRepository{db: db}
}

func (r *signupRepository) CreateBeerClubMember(ctx context.Context, member *models.BeerClubMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *signupRepository) CreateContactMessage(ctx context.Context, message *models.ContactMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}
