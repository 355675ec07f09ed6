package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"brewshop/internal/auth"
	"brewshop/internal/database"
	"brewshop/internal/middleware"
	"brewshop/internal/models"
	"brewshop/internal/notify"
	"brewshop/internal/redis"
	"brewshop/internal/repository"
	"brewshop/internal/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	goredis "github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t       *testing.T
	engine  *gin.Engine
	db      *gorm.DB
	queue   *notify.RedisQueue
	tokens  *auth.Manager
	users   services.UserService
	catalog services.CatalogService
	media   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	redisClient := redis.NewClient(rdb)
	queue := notify.NewRedisQueue(redisClient)

	tokens := auth.NewManager("test-secret", time.Hour, 24*time.Hour, 7*24*time.Hour)

	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	shippingRepo := repository.NewShippingRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	catalog := services.NewCatalogService(productRepo, repository.NewCategoryRepository(db),
		repository.NewStoreRepository(db), redisClient)
	users := services.NewUserService(db, repository.NewUserRepository(db), tokens, queue, time.Hour)
	sessions := NewSessions(redisClient, time.Hour)
	media := t.TempDir()

	router := &Router{
		Tokens:    tokens,
		MediaRoot: media,
		API:       NewAPIHandler(sessions, db, redisClient),
		Catalog: NewCatalogHandler(catalog,
			services.NewWishlistService(repository.NewWishlistRepository(db), productRepo), sessions),
		Cart: NewCartHandler(services.NewCartService(db, cartRepo, productRepo), sessions),
		Order: NewOrderHandler(
			services.NewShippingService(db, cartRepo, shippingRepo),
			services.NewOrderService(db, orderRepo, cartRepo, shippingRepo, queue),
			services.NewTrackingService(db, orderRepo, cartRepo, shippingRepo,
				repository.NewTrackingRepository(db), queue),
			services.NewPaymentService(orderRepo, cartRepo, shippingRepo,
				repository.NewPaymentRepository(db), queue),
			sessions,
		),
		User:   NewUserHandler(users),
		Review: NewReviewHandler(services.NewReviewService(db, repository.NewReviewRepository(db), productRepo), media),
		Signup: NewSignupHandler(services.NewSignupService(repository.NewSignupRepository(db))),
	}

	return &testServer{
		t:       t,
		engine:  router.Engine(),
		db:      db,
		queue:   queue,
		tokens:  tokens,
		users:   users,
		catalog: catalog,
		media:   media,
	}
}

type requestOption func(*http.Request)

func withToken(token string) requestOption {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func withSession(key string) requestOption {
	return func(r *http.Request) { r.Header.Set(middleware.SessionHeader, key) }
}

func (s *testServer) do(method, path string, body interface{}, opts ...requestOption) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, opt := range opts {
		opt(req)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []interface{} {
	t.Helper()
	var out []interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func money(t *testing.T, v interface{}) string {
	t.Helper()
	s, ok := v.(string)
	require.True(t, ok, "expected a decimal string, got %#v", v)
	return decimal.RequireFromString(s).StringFixed(2)
}

func idOf(t *testing.T, body map[string]interface{}) uint {
	t.Helper()
	v, ok := body["id"].(float64)
	require.True(t, ok, "missing id in %v", body)
	return uint(v)
}

// user creates a verified account and returns an access token for it.
func (s *testServer) user(email string, staff bool) (*models.User, string) {
	s.t.Helper()
	user := &models.User{Email: email, FirstName: "Ada", LastName: "Brewer", IsVerified: true, IsStaff: staff}
	require.NoError(s.t, s.users.CreateUser(context.Background(), user, "hoppy-secret"))
	token, _, err := s.tokens.IssueAccess(user)
	require.NoError(s.t, err)
	return user, token
}

func (s *testServer) product(name, price string) *models.Product {
	s.t.Helper()
	ctx := context.Background()
	categories, err := s.catalog.ListCategories(ctx)
	require.NoError(s.t, err)

	var categoryID uint
	if len(categories) > 0 {
		categoryID = categories[0].ID
	} else {
		category := &models.ProductCategory{Name: "Beer"}
		require.NoError(s.t, s.catalog.CreateCategory(ctx, category))
		categoryID = category.ID
	}

	product, err := s.catalog.CreateProduct(ctx, services.ProductInput{
		Name:       name,
		Price:      decimal.RequireFromString(price),
		CategoryID: categoryID,
		Stock:      50,
	})
	require.NoError(s.t, err)
	return product
}

func shippingBody(cartID uint) map[string]interface{} {
	return map[string]interface{}{
		"cart":        cartID,
		"first_name":  "Ada",
		"last_name":   "Brewer",
		"email":       "ada@example.com",
		"phone":       "+1 555 0100",
		"address":     "1 Hop St",
		"city":        "Portland",
		"state":       "OR",
		"postal_code": "97201",
	}
}
