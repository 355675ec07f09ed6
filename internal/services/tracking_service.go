package services

import (
	"context"
	"strings"

	"brewshop/internal/models"
	"brewshop/internal/notify"
	"brewshop/internal/repository"

	"gorm.io/gorm"
)

type TrackingService interface {
	Append(ctx context.Context, viewer Viewer, orderID uint, status string) (*models.OrderTracking, error)
	List(ctx context.Context, viewer Viewer, orderID uint) ([]models.OrderTracking, error)
}

type trackingService struct {
	db           *gorm.DB
	orderRepo    repository.OrderRepository
	cartRepo     repository.CartRepository
	shippingRepo repository.ShippingRepository
	trackingRepo repository.TrackingRepository
	queue        notify.Queue
}

func NewTrackingService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	shippingRepo repository.ShippingRepository,
	trackingRepo repository.TrackingRepository,
	queue notify.Queue,
) TrackingService {
	return &trackingService{
		db:           db,
		orderRepo:    orderRepo,
		cartRepo:     cartRepo,
		shippingRepo: shippingRepo,
		trackingRepo: trackingRepo,
		queue:        queue,
	}
}

// Append records a status entry for an order. Entries naming one of the
// order statuses also move the order to that status.
func (s *trackingService) Append(ctx context.Context, viewer Viewer, orderID uint, status string) (*models.OrderTracking, error) {
	if !viewer.Staff {
		return nil, ErrForbidden
	}
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, &ValidationError{Fields: map[string]string{"status": "This field is required."}}
	}
	verr := &ValidationError{}
	verr.Max("status", status, 255)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	var (
		order    *models.Order
		tracking *models.OrderTracking
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.orderRepo.WithTx(tx)

		var err error
		order, err = orders.LockByID(ctx, orderID)
		if err != nil {
			return translate(err, ErrOrderNotFound)
		}

		tracking = &models.OrderTracking{OrderID: order.ID, Status: status, UpdatedBy: viewer.Name()}
		if err := s.trackingRepo.WithTx(tx).Create(ctx, tracking); err != nil {
			return err
		}

		if next, ok := models.ParseOrderStatus(status); ok && next != order.OrderStatus {
			if err := orders.UpdateStatus(ctx, order.ID, next); err != nil {
				return err
			}
			order.OrderStatus = next
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	shipping, err := s.shippingRepo.GetByID(ctx, order.ShippingID)
	if err != nil {
		logSkipped("order status", order.ID, err)
		return tracking, nil
	}
	publish(ctx, s.queue, notify.OrderStatusUpdate(order, shipping, status)...)
	return tracking, nil
}

func (s *trackingService) List(ctx context.Context, viewer Viewer, orderID uint) ([]models.OrderTracking, error) {
	if _, err := loadOrderFor(ctx, s.orderRepo, s.cartRepo, viewer, orderID); err != nil {
		return nil, err
	}
	return s.trackingRepo.ListByOrder(ctx, orderID)
}
