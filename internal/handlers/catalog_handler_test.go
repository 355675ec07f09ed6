package handlers

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductEndpoints(t *testing.T) {
	s := newTestServer(t)
	_, token := s.user("ada@example.com", false)
	_, staffToken := s.user("admin@example.com", true)
	ale := s.product("Pale Ale", "5.00")
	s.product("Amber Ale", "7.00")

	w := s.do(http.MethodGet, "/api/v1/products/?ordering=-price&limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode(t, w)
	assert.EqualValues(t, 2, page["count"])
	results := page["results"].([]interface{})
	require.Len(t, results, 1)
	assert.Equal(t, "Amber Ale", results[0].(map[string]interface{})["name"])

	w = s.do(http.MethodGet, fmt.Sprintf("/api/v1/products/%d/", ale.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "5.00", money(t, decode(t, w)["price"]))

	w = s.do(http.MethodGet, "/api/v1/products/9999/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(http.MethodGet, "/api/v1/products/abc/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	product := map[string]interface{}{"name": "Porter", "price": "8.25", "category": ale.CategoryID, "stock": 10}
	w = s.do(http.MethodPost, "/api/v1/products/", product, withToken(token))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/v1/products/", product, withToken(staffToken))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, true, decode(t, w)["stock_status"])

	product["price"] = "0"
	w = s.do(http.MethodPost, "/api/v1/products/", product, withToken(staffToken))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["details"], "price")

	w = s.do(http.MethodGet, "/api/v1/product-category/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeList(t, w), 1)

	w = s.do(http.MethodGet, "/api/v1/stores/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeList(t, w))
}

func TestWishlistEndpoints(t *testing.T) {
	s := newTestServer(t)
	ale := s.product("Pale Ale", "5.00")

	w := s.do(http.MethodPost, fmt.Sprintf("/api/v1/products/%d/add-to-wishlist/", ale.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Product added to wishlist", decode(t, w)["status"])
	key := w.Header().Get("X-Session-Key")
	require.NotEmpty(t, key)

	w = s.do(http.MethodGet, "/api/v1/wishlist/", nil, withSession(key))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["products"], 1)

	w = s.do(http.MethodGet, "/api/v1/wishlist/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["products"])

	w = s.do(http.MethodPost, "/api/v1/products/9999/add-to-wishlist/", nil, withSession(key))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (s *testServer) upload(path, filename string) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filename)
	require.NoError(s.t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\nfake"))
	require.NoError(s.t, err)
	require.NoError(s.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func TestReviewPhotos(t *testing.T) {
	s := newTestServer(t)
	ale := s.product("Pale Ale", "5.00")

	w := s.do(http.MethodPost, "/api/v1/review/", map[string]interface{}{
		"product": ale.ID, "rating": 5, "review_text": "Crisp.", "name": "Ada", "email": "ada@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	path := fmt.Sprintf("/api/v1/review/%d/add_photo/", idOf(t, decode(t, w)))

	w = s.upload(path, "notes.txt")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for _, name := range []string{"a.png", "b.jpg"} {
		w = s.upload(path, name)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	photos := decode(t, w)["review"].(map[string]interface{})["photos"].([]interface{})
	require.Len(t, photos, 2)
	image := photos[0].(map[string]interface{})["image"].(string)
	_, err := os.Stat(filepath.Join(s.media, image))
	assert.NoError(t, err)

	w = s.upload(path, "c.png")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Can add utmost 2 images", decode(t, w)["error"])

	// the rejected upload is not left behind
	entries, err := os.ReadDir(filepath.Join(s.media, reviewPhotoDir))
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	w = s.do(http.MethodPost, "/api/v1/review/", map[string]interface{}{
		"product": ale.ID, "rating": 9, "name": "Ada", "email": "ada@example.com",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["details"], "rating")

	w = s.do(http.MethodGet, fmt.Sprintf("/api/v1/review/?product=%d", ale.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeList(t, w), 1)
}

func TestSignupEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/v1/beer-club/signup/", map[string]interface{}{
		"first_name": "Ada", "last_name": "Brewer", "email": "ada@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "ada@example.com", decode(t, w)["email"])

	w = s.do(http.MethodPost, "/api/v1/contact-us/signup/", map[string]interface{}{"name": "Ada"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	details := decode(t, w)["details"].(map[string]interface{})
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "message")
}

func TestSessionEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/session/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/api/session/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	key := decode(t, w)["session_key"].(string)
	require.NotEmpty(t, key)

	w = s.do(http.MethodGet, "/api/session/", nil, withSession(key))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "active", decode(t, w)["status"])

	w = s.do(http.MethodDelete, "/api/session/", nil, withSession(key))
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/session/", nil, withSession(key))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"database":"ok","redis":"ok"}`, w.Body.String())
}

func TestSignupRejectsDisplayNameEmail(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/v1/beer-club/signup/", map[string]interface{}{
		"first_name": "Ada", "last_name": "Brewer", "email": "Ada Brewer <ada@example.com>",
	})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	details := decode(t, w)["details"].(map[string]interface{})
	assert.Equal(t, "Enter a valid email address.", details["email"])

	w = s.do(http.MethodPost, "/api/v1/contact-us/signup/", map[string]interface{}{
		"name": "Ada", "email": `"x" <a@b.c>`, "message": "Hello",
	})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, decode(t, w)["details"], "email")
}
