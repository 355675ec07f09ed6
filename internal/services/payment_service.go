package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"brewshop/internal/models"
	"brewshop/internal/notify"
	"brewshop/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentInput struct {
	Status        string
	Method        string
	Date          *time.Time
	Amount        decimal.Decimal
	TransactionID string
}

type PaymentService interface {
	Record(ctx context.Context, viewer Viewer, orderID uint, input PaymentInput) (*models.Payment, error)
	List(ctx context.Context, viewer Viewer, orderID uint) ([]models.Payment, error)
}

type paymentService struct {
	orderRepo    repository.OrderRepository
	cartRepo     repository.CartRepository
	shippingRepo repository.ShippingRepository
	paymentRepo  repository.PaymentRepository
	queue        notify.Queue
	now          func() time.Time
}

func NewPaymentService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	shippingRepo repository.ShippingRepository,
	paymentRepo repository.PaymentRepository,
	queue notify.Queue,
) PaymentService {
	return &paymentService{
		orderRepo:    orderRepo,
		cartRepo:     cartRepo,
		shippingRepo: shippingRepo,
		paymentRepo:  paymentRepo,
		queue:        queue,
		now:          time.Now,
	}
}

// Record stores a payment reported for an order. Nothing is reconciled
// against a gateway.
func (s *paymentService) Record(ctx context.Context, viewer Viewer, orderID uint, input PaymentInput) (*models.Payment, error) {
	verr := &ValidationError{}
	status := models.PaymentPending
	if input.Status != "" {
		parsed, ok := models.ParsePaymentStatus(input.Status)
		if !ok {
			verr.Add("payment_status", "\""+input.Status+"\" is not a valid choice.")
		}
		status = parsed
	}
	method := strings.TrimSpace(input.Method)
	if verr.Required("payment_method", method) {
		verr.Max("payment_method", method, 50)
	}
	verr.Max("transaction_id", input.TransactionID, 100)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	order, err := loadOrderFor(ctx, s.orderRepo, s.cartRepo, viewer, orderID)
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		OrderID:       order.ID,
		PaymentStatus: status,
		PaymentMethod: method,
		PaymentDate:   s.now(),
		Amount:        input.Amount.Round(2),
		TransactionID: strings.TrimSpace(input.TransactionID),
	}
	if input.Date != nil {
		payment.PaymentDate = *input.Date
	}
	if payment.TransactionID == "" {
		payment.TransactionID = uuid.NewString()
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateTransaction
		}
		return nil, err
	}

	shipping, err := s.shippingRepo.GetByID(ctx, order.ShippingID)
	if err != nil {
		logSkipped("payment", order.ID, err)
		return payment, nil
	}
	publish(ctx, s.queue, notify.PaymentReceived(order, shipping, payment))
	return payment, nil
}

func (s *paymentService) List(ctx context.Context, viewer Viewer, orderID uint) ([]models.Payment, error) {
	if _, err := loadOrderFor(ctx, s.orderRepo, s.cartRepo, viewer, orderID); err != nil {
		return nil, err
	}
	return s.paymentRepo.ListByOrder(ctx, orderID)
}
