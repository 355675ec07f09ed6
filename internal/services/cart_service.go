package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"brewshop/internal/models"
	"brewshop/internal/pricing"
	"brewshop/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartView is a cart with its lines and the totals derived from them.
type CartView struct {
	ID             uint              `json:"id"`
	SessionKey     string            `json:"session_key,omitempty"`
	UserID         *uint             `json:"user,omitempty"`
	IsOrderCreated bool              `json:"is_order_created"`
	Items          []models.CartItem `json:"items"`
	TotalPrice     decimal.Decimal   `json:"total_price"`
	TotalQuantity  int               `json:"total_quantity"`
	FreeCases      int               `json:"free_cases"`
	CreatedAt      time.Time         `json:"created_at"`
}

func newCartView(cart *models.Cart, items []models.CartItem) *CartView {
	summary := summarize(items)
	if items == nil {
		items = []models.CartItem{}
	}
	return &CartView{
		ID:             cart.ID,
		SessionKey:     cart.SessionKey(),
		UserID:         cart.UserID,
		IsOrderCreated: cart.IsOrderCreated,
		Items:          items,
		TotalPrice:     summary.TotalPrice,
		TotalQuantity:  summary.TotalQuantity,
		FreeCases:      cart.FreeCases,
		CreatedAt:      cart.CreatedAt,
	}
}

func summarize(items []models.CartItem) pricing.Summary {
	lines := make([]pricing.Line, len(items))
	for i, item := range items {
		lines[i] = pricing.Line{UnitPrice: item.Product.Price, Quantity: item.Quantity}
	}
	return pricing.Summarize(lines)
}

// ItemQuantity is one entry of a bulk cart update.
type ItemQuantity struct {
	ProductID uint
	Quantity  int
}

type CartService interface {
	ResolveOpenCart(ctx context.Context, owner models.Owner) (*models.Cart, error)
	GetOpenCart(ctx context.Context, owner models.Owner) (*CartView, error)
	ListCarts(ctx context.Context, owner models.Owner) ([]CartView, error)
	GetCart(ctx context.Context, owner models.Owner, cartID uint) (*CartView, error)
	AddToCart(ctx context.Context, owner models.Owner, productID uint, quantity int) (*CartView, *models.CartItem, error)
	RemoveFromCart(ctx context.Context, owner models.Owner, cartID, productID uint) (*CartView, error)
	UpdateQuantity(ctx context.Context, owner models.Owner, cartID, itemID uint, quantity int) (*models.CartItem, *CartView, error)
	SetItems(ctx context.Context, owner models.Owner, cartID uint, items []ItemQuantity) (*CartView, error)
	DeleteCart(ctx context.Context, owner models.Owner, cartID uint) error
}

type cartService struct {
	db          *gorm.DB
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(db *gorm.DB, cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{db: db, cartRepo: cartRepo, productRepo: productRepo}
}

// ResolveOpenCart returns the owner's open cart, creating it on first use.
// Two concurrent first requests race on the open-cart unique index; the
// loser reads the winner's row.
func (s *cartService) ResolveOpenCart(ctx context.Context, owner models.Owner) (*models.Cart, error) {
	if owner.IsZero() {
		return nil, ErrCartNotFound
	}

	cart, err := s.cartRepo.FindOpenByOwner(ctx, owner)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = models.NewCart(owner)
	err = s.cartRepo.Create(ctx, cart)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return s.cartRepo.FindOpenByOwner(ctx, owner)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return cart, nil
}

func (s *cartService) GetOpenCart(ctx context.Context, owner models.Owner) (*CartView, error) {
	cart, err := s.ResolveOpenCart(ctx, owner)
	if err != nil {
		return nil, err
	}
	items, err := s.cartRepo.ListItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	return newCartView(cart, items), nil
}

func (s *cartService) ListCarts(ctx context.Context, owner models.Owner) ([]CartView, error) {
	carts, err := s.cartRepo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	views := make([]CartView, 0, len(carts))
	for i := range carts {
		views = append(views, *newCartView(&carts[i], carts[i].Items))
	}
	return views, nil
}

func (s *cartService) GetCart(ctx context.Context, owner models.Owner, cartID uint) (*CartView, error) {
	cart, err := s.cartRepo.GetByID(ctx, cartID)
	if err != nil {
		return nil, translate(err, ErrCartNotFound)
	}
	if cart.Owner() != owner {
		return nil, ErrCartNotFound
	}
	items, err := s.cartRepo.ListItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	return newCartView(cart, items), nil
}

// mutate runs fn against the locked, open cart and recomputes the free-case
// tier before the transaction commits.
func (s *cartService) mutate(ctx context.Context, owner models.Owner, cartID uint, fn func(tx *gorm.DB, repo repository.CartRepository, cart *models.Cart) error) (*CartView, error) {
	var view *CartView
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.cartRepo.WithTx(tx)

		cart, err := repo.LockByID(ctx, cartID)
		if err != nil {
			return translate(err, ErrCartNotFound)
		}
		if cart.Owner() != owner {
			return ErrCartNotFound
		}
		if cart.IsOrderCreated {
			return ErrCartConsumed
		}

		if err := fn(tx, repo, cart); err != nil {
			return err
		}

		items, err := repo.ListItems(ctx, cart.ID)
		if err != nil {
			return err
		}
		freeCases := summarize(items).FreeCases
		if freeCases != cart.FreeCases {
			if err := repo.UpdateFreeCases(ctx, cart.ID, freeCases); err != nil {
				return err
			}
			cart.FreeCases = freeCases
		}
		view = newCartView(cart, items)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *cartService) loadPurchasable(ctx context.Context, tx *gorm.DB, productID uint) (*models.Product, error) {
	product, err := s.productRepo.WithTx(tx).GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidReference, ErrProductNotFound)
		}
		return nil, err
	}
	if !product.StockStatus {
		return nil, ErrOutOfStock
	}
	return product, nil
}

// AddToCart sets the quantity of a product in the caller's open cart.
func (s *cartService) AddToCart(ctx context.Context, owner models.Owner, productID uint, quantity int) (*CartView, *models.CartItem, error) {
	if quantity <= 0 {
		return nil, nil, ErrInvalidQuantity
	}

	cart, err := s.ResolveOpenCart(ctx, owner)
	if err != nil {
		return nil, nil, err
	}

	view, err := s.mutate(ctx, owner, cart.ID, func(tx *gorm.DB, repo repository.CartRepository, cart *models.Cart) error {
		if _, err := s.loadPurchasable(ctx, tx, productID); err != nil {
			return err
		}
		return repo.UpsertItem(ctx, &models.CartItem{CartID: cart.ID, ProductID: productID, Quantity: quantity})
	})
	if err != nil {
		return nil, nil, err
	}

	for i := range view.Items {
		if view.Items[i].ProductID == productID {
			return view, &view.Items[i], nil
		}
	}
	return view, nil, ErrCartItemNotFound
}

func (s *cartService) RemoveFromCart(ctx context.Context, owner models.Owner, cartID, productID uint) (*CartView, error) {
	return s.mutate(ctx, owner, cartID, func(tx *gorm.DB, repo repository.CartRepository, cart *models.Cart) error {
		removed, err := repo.DeleteItemByProduct(ctx, cart.ID, productID)
		if err != nil {
			return err
		}
		if removed == 0 {
			return ErrCartItemNotFound
		}
		return nil
	})
}

func (s *cartService) UpdateQuantity(ctx context.Context, owner models.Owner, cartID, itemID uint, quantity int) (*models.CartItem, *CartView, error) {
	if quantity <= 0 {
		return nil, nil, ErrInvalidQuantity
	}

	view, err := s.mutate(ctx, owner, cartID, func(tx *gorm.DB, repo repository.CartRepository, cart *models.Cart) error {
		if _, err := repo.GetItem(ctx, cart.ID, itemID); err != nil {
			return translate(err, ErrCartItemNotFound)
		}
		return repo.UpdateItemQuantity(ctx, itemID, quantity)
	})
	if err != nil {
		return nil, nil, err
	}

	for i := range view.Items {
		if view.Items[i].ID == itemID {
			return &view.Items[i], view, nil
		}
	}
	return nil, view, ErrCartItemNotFound
}

// SetItems replaces the cart contents with items.
func (s *cartService) SetItems(ctx context.Context, owner models.Owner, cartID uint, items []ItemQuantity) (*CartView, error) {
	seen := make(map[uint]bool, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if seen[item.ProductID] {
			return nil, &ValidationError{Fields: map[string]string{"items": fmt.Sprintf("product %d listed twice", item.ProductID)}}
		}
		seen[item.ProductID] = true
	}

	return s.mutate(ctx, owner, cartID, func(tx *gorm.DB, repo repository.CartRepository, cart *models.Cart) error {
		for _, item := range items {
			if _, err := s.loadPurchasable(ctx, tx, item.ProductID); err != nil {
				return err
			}
		}
		if err := repo.DeleteItems(ctx, cart.ID); err != nil {
			return err
		}
		for _, item := range items {
			line := &models.CartItem{CartID: cart.ID, ProductID: item.ProductID, Quantity: item.Quantity}
			if err := repo.UpsertItem(ctx, line); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteCart removes an open cart. Consumed carts belong to an order and
// stay.
func (s *cartService) DeleteCart(ctx context.Context, owner models.Owner, cartID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.cartRepo.WithTx(tx)
		cart, err := repo.LockByID(ctx, cartID)
		if err != nil {
			return translate(err, ErrCartNotFound)
		}
		if cart.Owner() != owner {
			return ErrCartNotFound
		}
		if cart.IsOrderCreated {
			return ErrCartConsumed
		}
		return repo.Delete(ctx, cart.ID)
	})
}
