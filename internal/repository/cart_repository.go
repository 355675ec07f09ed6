package repository

import (
	"context"

	"brewshop/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository interface {
	Create(ctx context.Context, cart *models.Cart) error
	GetByID(ctx context.Context, id uint) (*models.Cart, error)
	LockByID(ctx context.Context, id uint) (*models.Cart, error)
	FindOpenByOwner(ctx context.Context, owner models.Owner) (*models.Cart, error)
	ListByOwner(ctx context.Context, owner models.Owner) ([]models.Cart, error)
	Delete(ctx context.Context, id uint) error

	ListItems(ctx context.Context, cartID uint) ([]models.CartItem, error)
	GetItem(ctx context.Context, cartID, itemID uint) (*models.CartItem, error)
	UpsertItem(ctx context.Context, item *models.CartItem) error
	UpdateItemQuantity(ctx context.Context, itemID uint, quantity int) error
	DeleteItemByProduct(ctx context.Context, cartID, productID uint) (int64, error)
	DeleteItems(ctx context.Context, cartID uint) error

	UpdateFreeCases(ctx context.Context, cartID uint, freeCases int) error
	MarkOrderCreated(ctx context.Context, cartID uint) (bool, error)
	WithTx(tx *gorm.DB) CartRepository
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) WithTx(tx *gorm.DB) CartRepository {
	return &cartRepository{db: tx}
}

func (r *cartRepository) Create(ctx context.Context, cart *models.Cart) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(cart).Error
}

func (r *cartRepository) GetByID(ctx context.Context, id uint) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).First(&cart, id).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// LockByID reads the cart row and holds it until the surrounding
// transaction ends.
func (r *cartRepository) LockByID(ctx context.Context, id uint) (*models.Cart, error) {
	var cart models.Cart
	err := lockForUpdate(r.db.WithContext(ctx)).First(&cart, id).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) FindOpenByOwner(ctx context.Context, owner models.Owner) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Where("owner_kind = ? AND owner_key = ? AND is_order_created = ?", owner.Kind, owner.Key, false).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) ListByOwner(ctx context.Context, owner models.Owner) ([]models.Cart, error) {
	var carts []models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.id ASC") }).
		Preload("Items.Product").
		Where("owner_kind = ? AND owner_key = ?", owner.Kind, owner.Key).
		Order("created_at DESC").
		Find(&carts).Error
	return carts, err
}

// Delete removes the cart and its items.
func (r *cartRepository) Delete(ctx context.Context, id uint) error {
	if err := r.DeleteItems(ctx, id); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&models.Cart{}, id).Error
}

func (r *cartRepository) ListItems(ctx context.Context, cartID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).Preload("Product").
		Where("cart_id = ?", cartID).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

func (r *cartRepository) GetItem(ctx context.Context, cartID, itemID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).Preload("Product").
		Where("id = ? AND cart_id = ?", itemID, cartID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpsertItem sets the quantity of a product in a cart, inserting the line
// when the product is not there yet.
func (r *cartRepository) UpsertItem(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Omit("Product").Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
	}).Create(item).Error
}

func (r *cartRepository) UpdateItemQuantity(ctx context.Context, itemID uint, quantity int) error {
	return r.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", quantity).Error
}

func (r *cartRepository) DeleteItemByProduct(ctx context.Context, cartID, productID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartItem{})
	return result.RowsAffected, result.Error
}

func (r *cartRepository) DeleteItems(ctx context.Context, cartID uint) error {
	return r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}

func (r *cartRepository) UpdateFreeCases(ctx context.Context, cartID uint, freeCases int) error {
	return r.db.WithContext(ctx).Model(&models.Cart{}).
		Where("id = ?", cartID).
		Update("free_cases", freeCases).Error
}

// MarkOrderCreated flips the consumed flag. It reports false when another
// checkout already consumed the cart.
func (r *cartRepository) MarkOrderCreated(ctx context.Context, cartID uint) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Cart{}).
		Where("id = ? AND is_order_created = ?", cartID, false).
		Update("is_order_created", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
