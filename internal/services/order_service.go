package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"brewshop/internal/models"
	"brewshop/internal/notify"
	"brewshop/internal/pricing"
	"brewshop/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CheckoutInput struct {
	CartID         uint
	ShippingID     uint
	DeliveryCharge *decimal.Decimal
}

type OrderStats struct {
	TotalOrders                   int64   `json:"total_orders"`
	TotalItems                    int64   `json:"total_items"`
	LastWeekTotalOrdersPercentage float64 `json:"last_week_total_orders_percentage"`
	LastWeekTotalItemsPercentage  float64 `json:"last_week_total_items_percentage"`
}

type OrderService interface {
	Checkout(ctx context.Context, owner models.Owner, input CheckoutInput) (*models.Order, error)
	GetOrder(ctx context.Context, viewer Viewer, orderID uint) (*models.Order, error)
	ListOrders(ctx context.Context, owner models.Owner, page repository.Page) ([]models.Order, int64, error)
	Stats(ctx context.Context, owner models.Owner) (*OrderStats, error)
}

type orderService struct {
	db           *gorm.DB
	orderRepo    repository.OrderRepository
	cartRepo     repository.CartRepository
	shippingRepo repository.ShippingRepository
	queue        notify.Queue
	now          func() time.Time
}

func NewOrderService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	shippingRepo repository.ShippingRepository,
	queue notify.Queue,
) OrderService {
	return &orderService{
		db:           db,
		orderRepo:    orderRepo,
		cartRepo:     cartRepo,
		shippingRepo: shippingRepo,
		queue:        queue,
		now:          time.Now,
	}
}

// Checkout turns the caller's open cart and its shipping address into an
// order. The cart row stays locked until the order exists and the cart is
// flagged, so a concurrent second checkout sees the flag and fails.
func (s *orderService) Checkout(ctx context.Context, owner models.Owner, input CheckoutInput) (*models.Order, error) {
	delivery := decimal.Zero
	if input.DeliveryCharge != nil {
		delivery = input.DeliveryCharge.Round(2)
	}
	if delivery.IsNegative() {
		return nil, ErrInvalidDeliveryCharge
	}

	var (
		order     *models.Order
		shipping  *models.Shipping
		items     []models.CartItem
		freeCases int
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		carts := s.cartRepo.WithTx(tx)

		cart, err := carts.LockByID(ctx, input.CartID)
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

		shipping, err = s.shippingRepo.WithTx(tx).GetByID(ctx, input.ShippingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %w", ErrInvalidReference, ErrShippingNotFound)
			}
			return err
		}
		if shipping.CartID != cart.ID {
			return ErrShippingMismatch
		}

		items, err = carts.ListItems(ctx, cart.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrCartEmpty
		}
		summary := summarize(items)
		freeCases = summary.FreeCases

		order = &models.Order{
			CartID:         cart.ID,
			ShippingID:     shipping.ID,
			TotalPrice:     summary.TotalPrice.Add(delivery),
			DeliveryCharge: delivery,
			OrderStatus:    models.OrderPending,
		}
		if err := s.orderRepo.WithTx(tx).Create(ctx, order); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrCartConsumed
			}
			return fmt.Errorf("failed to create order: %w", err)
		}

		flipped, err := carts.MarkOrderCreated(ctx, cart.ID)
		if err != nil {
			return err
		}
		if !flipped {
			return ErrCartConsumed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.queue, notify.OrderConfirmation(order, shipping, items, freeCases))
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, viewer Viewer, orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetDetailed(ctx, orderID)
	if err != nil {
		return nil, translate(err, ErrOrderNotFound)
	}
	if !viewer.Staff && (order.Cart == nil || order.Cart.Owner() != viewer.Owner) {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, owner models.Owner, page repository.Page) ([]models.Order, int64, error) {
	if page.Limit <= 0 {
		page.Limit = DefaultPageSize
	}
	return s.orderRepo.ListByOwner(ctx, owner, page)
}

// Stats compares the last seven days with the seven days before.
func (s *orderService) Stats(ctx context.Context, owner models.Owner) (*OrderStats, error) {
	now := s.now()
	weekAgo := now.AddDate(0, 0, -7)
	twoWeeksAgo := now.AddDate(0, 0, -14)

	current, err := s.orderRepo.CountBetween(ctx, owner, weekAgo, now)
	if err != nil {
		return nil, err
	}
	previous, err := s.orderRepo.CountBetween(ctx, owner, twoWeeksAgo, weekAgo)
	if err != nil {
		return nil, err
	}

	return &OrderStats{
		TotalOrders:                   current.Orders,
		TotalItems:                    current.Items,
		LastWeekTotalOrdersPercentage: pricing.PercentageChange(current.Orders, previous.Orders),
		LastWeekTotalItemsPercentage:  pricing.PercentageChange(current.Items, previous.Items),
	}, nil
}

// loadOrderFor returns the order when viewer owns its cart or is staff.
func loadOrderFor(ctx context.Context, orders repository.OrderRepository, carts repository.CartRepository, viewer Viewer, orderID uint) (*models.Order, error) {
	order, err := orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, translate(err, ErrOrderNotFound)
	}
	if viewer.Staff {
		return order, nil
	}
	cart, err := carts.GetByID(ctx, order.CartID)
	if err != nil {
		return nil, translate(err, ErrOrderNotFound)
	}
	if cart.Owner() != viewer.Owner {
		return nil, ErrOrderNotFound
	}
	return order, nil
}
