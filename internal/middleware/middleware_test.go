package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"brewshop/internal/auth"
	"brewshop/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(tokens *auth.Manager, guards ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(Authenticate(tokens))
	handlers := append(guards, func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"user": nil})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": claims.UserID})
	})
	r.GET("/", handlers...)
	return r
}

func get(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	tokens := auth.NewManager("secret", time.Minute, time.Hour, time.Hour)
	access, _, err := tokens.IssueAccess(&models.User{ID: 7, Email: "ada@example.com"})
	require.NoError(t, err)
	refresh, _, err := tokens.IssueRefresh(&models.User{ID: 7})
	require.NoError(t, err)

	r := newRouter(tokens)

	w := get(r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":null}`, w.Body.String())

	w = get(r, "Bearer "+access)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":7}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer "+refresh).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer nonsense").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, access).Code)
}

func TestRequireStaff(t *testing.T) {
	tokens := auth.NewManager("secret", time.Minute, time.Hour, time.Hour)
	customer, _, err := tokens.IssueAccess(&models.User{ID: 7})
	require.NoError(t, err)
	admin, _, err := tokens.IssueAccess(&models.User{ID: 1, IsStaff: true})
	require.NoError(t, err)

	r := newRouter(tokens, RequireStaff())
	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	assert.Equal(t, http.StatusForbidden, get(r, "Bearer "+customer).Code)
	assert.Equal(t, http.StatusOK, get(r, "Bearer "+admin).Code)

	r = newRouter(tokens, RequireAuth())
	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	assert.Equal(t, http.StatusOK, get(r, "Bearer "+customer).Code)
}

func TestRateLimit(t *testing.T) {
	limit, err := RateLimit("2-M")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/", limit, func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, get(r, "").Code)
	assert.Equal(t, http.StatusOK, get(r, "").Code)
	w := get(r, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	_, err = RateLimit("lots")
	assert.Error(t, err)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://shop.example"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://shop.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://shop.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
