package repository

import (
	"context"
	"strings"
	"time"

	"brewshop/internal/models"

	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID uint, hash string) error
	SetVerified(ctx context.Context, userID uint, verified bool) error
	TouchLastLogin(ctx context.Context, userID uint, at time.Time) error
	LockByID(ctx context.Context, id uint) (*models.User, error)

	CreateRecovery(ctx context.Context, recovery *models.Recovery) error
	FindRecovery(ctx context.Context, userID uint, token string) (*models.Recovery, error)
	DeleteRecoveries(ctx context.Context, userID uint) error
	WithTx(tx *gorm.DB) UserRepository
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) WithTx(tx *gorm.DB) UserRepository {
	return &userRepository{db: tx}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	user.Email = NormalizeEmail(user.Email)
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) LockByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := lockForUpdate(r.db.WithContext(ctx)).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Update saves profile fields only; credentials and flags have their own
// methods.
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Model(user).Select(
		"first_name", "last_name", "full_name", "business_name",
		"business_type", "license_number", "phone", "address",
	).Updates(user).Error
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID uint, hash string) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("password", hash).Error
}

func (r *userRepository) SetVerified(ctx context.Context, userID uint, verified bool) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("is_verified", verified).Error
}

func (r *userRepository) TouchLastLogin(ctx context.Context, userID uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("last_login", at).Error
}

func (r *userRepository) CreateRecovery(ctx context.Context, recovery *models.Recovery) error {
	return r.db.WithContext(ctx).Omit("User").Create(recovery).Error
}

func (r *userRepository) FindRecovery(ctx context.Context, userID uint, token string) (*models.Recovery, error) {
	var recovery models.Recovery
	err := r.db.WithContext(ctx).Where("user_id = ? AND token = ?", userID, token).First(&recovery).Error
	if err != nil {
		return nil, err
	}
	return &recovery, nil
}

func (r *userRepository) DeleteRecoveries(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Recovery{}).Error
}

// NormalizeEmail is the canonical form used for the unique e-mail index.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
