package services

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"brewshop/internal/auth"
	"brewshop/internal/database"
	"brewshop/internal/models"
	"brewshop/internal/notify"
	"brewshop/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

type recordingQueue struct {
	mu   sync.Mutex
	msgs []notify.Message
	err  error
}

func (q *recordingQueue) Enqueue(ctx context.Context, msgs ...notify.Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.msgs = append(q.msgs, msgs...)
	return nil
}

func (q *recordingQueue) kinds() []notify.Kind {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]notify.Kind, len(q.msgs))
	for i, m := range q.msgs {
		out[i] = m.Kind
	}
	return out
}

var errQueueDown = errors.New("redis: connection refused")

type testEnv struct {
	db       *gorm.DB
	queue    *recordingQueue
	tokens   *auth.Manager
	catalog  CatalogService
	carts    CartService
	shipping ShippingService
	orders   OrderService
	tracking TrackingService
	payments PaymentService
	users    UserService
	reviews  ReviewService
	wishlist WishlistService
	signups  SignupService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	queue := &recordingQueue{}
	tokens := auth.NewManager("test-secret", time.Minute, time.Hour, 7*24*time.Hour)

	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	shippingRepo := repository.NewShippingRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	return &testEnv{
		db:     db,
		queue:  queue,
		tokens: tokens,
		catalog: NewCatalogService(productRepo, repository.NewCategoryRepository(db),
			repository.NewStoreRepository(db), nil),
		carts:    NewCartService(db, cartRepo, productRepo),
		shipping: NewShippingService(db, cartRepo, shippingRepo),
		orders:   NewOrderService(db, orderRepo, cartRepo, shippingRepo, queue),
		tracking: NewTrackingService(db, orderRepo, cartRepo, shippingRepo,
			repository.NewTrackingRepository(db), queue),
		payments: NewPaymentService(orderRepo, cartRepo, shippingRepo,
			repository.NewPaymentRepository(db), queue),
		users:    NewUserService(db, repository.NewUserRepository(db), tokens, queue, time.Hour),
		reviews:  NewReviewService(db, repository.NewReviewRepository(db), productRepo),
		wishlist: NewWishlistService(repository.NewWishlistRepository(db), productRepo),
		signups:  NewSignupService(repository.NewSignupRepository(db)),
	}
}

func (e *testEnv) category(t *testing.T, name string) *models.ProductCategory {
	t.Helper()
	category := &models.ProductCategory{Name: name}
	require.NoError(t, e.catalog.CreateCategory(context.Background(), category))
	return category
}

func (e *testEnv) product(t *testing.T, name, price string) *models.Product {
	t.Helper()
	var category models.ProductCategory
	err := e.db.Where("name = ?", "Beer").First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		category = *e.category(t, "Beer")
	} else {
		require.NoError(t, err)
	}

	product, err := e.catalog.CreateProduct(context.Background(), ProductInput{
		Name:       name,
		Price:      decimal.RequireFromString(price),
		CategoryID: category.ID,
		Stock:      100,
	})
	require.NoError(t, err)
	return product
}

func shippingInput(cartID uint) ShippingInput {
	return ShippingInput{
		CartID:     cartID,
		FirstName:  "Ada",
		LastName:   "Brewer",
		Email:      "ada@example.com",
		Phone:      "+1 555 0100",
		Address:    "1 Hop St",
		City:       "Portland",
		State:      "OR",
		PostalCode: "97201",
	}
}

func staff() Viewer {
	return Viewer{Owner: models.UserOwner(999), UserID: 999, Email: "admin@example.com", Staff: true}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
