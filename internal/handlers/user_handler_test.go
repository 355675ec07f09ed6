package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"brewshop/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)
	_, staffToken := s.user("admin@example.com", true)

	w := s.do(http.MethodPost, "/api/register", map[string]interface{}{
		"email": "Ada@Example.com", "first_name": "Ada", "last_name": "Brewer", "password": "hoppy-secret",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "User Registered Successfully", body["message"])

	w = s.do(http.MethodPost, "/api/register", map[string]interface{}{
		"email": "ada@example.com", "first_name": "Ada", "last_name": "Again", "password": "hoppy-secret",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "The email is already taken.", decode(t, w)["details"].(map[string]interface{})["email"])

	credentials := map[string]interface{}{"email": "ada@example.com", "password": "hoppy-secret"}
	w = s.do(http.MethodPost, "/api/login", credentials)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"statusCode":400,"message":"Account is not verified"}`, w.Body.String())

	var user models.User
	require.NoError(t, s.db.Where("email = ?", "ada@example.com").First(&user).Error)
	w = s.do(http.MethodPost, fmt.Sprintf("/api/v1/admin/users/%d/verify", user.ID), nil, withToken(staffToken))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decode(t, w)["is_verified"])

	w = s.do(http.MethodPost, "/api/login", map[string]interface{}{"email": "ada@example.com", "password": "wrong-one"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"statusCode":400,"message":"Invalid username or password"}`, w.Body.String())

	w = s.do(http.MethodPost, "/api/login", credentials)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	login := decode(t, w)["response_body"].(map[string]interface{})
	assert.Equal(t, "ada@example.com", login["username"])
	assert.Equal(t, "Ada", login["first"])
	assert.EqualValues(t, user.ID, login["id"])
	token := login["token"].(string)

	w = s.do(http.MethodGet, "/api/v1/profile/", nil, withToken(token))
	require.Equal(t, http.StatusOK, w.Code)
	profile := decode(t, w)
	assert.Equal(t, "ada@example.com", profile["email"])
	assert.NotContains(t, profile, "password")
}

func TestVerifyRequiresStaff(t *testing.T) {
	s := newTestServer(t)
	user, token := s.user("ada@example.com", false)

	w := s.do(http.MethodPost, fmt.Sprintf("/api/v1/admin/users/%d/verify", user.ID), nil, withToken(token))
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(http.MethodPost, fmt.Sprintf("/api/v1/admin/users/%d/verify", user.ID), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTokenPairEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.user("ada@example.com", false)

	w := s.do(http.MethodPost, "/api/token/", map[string]interface{}{"email": "ada@example.com", "password": "hoppy-secret"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	pair := decode(t, w)
	access := pair["access"].(string)
	refresh := pair["refresh"].(string)

	w = s.do(http.MethodPost, "/api/token/refresh/", map[string]interface{}{"refresh": refresh})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, decode(t, w)["access"])

	w = s.do(http.MethodPost, "/api/token/refresh/", map[string]interface{}{"refresh": access})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// a refresh token is not an access token
	w = s.do(http.MethodGet, "/api/v1/profile/", nil, withToken(refresh))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProfileAndPasswordChange(t *testing.T) {
	s := newTestServer(t)
	_, token := s.user("ada@example.com", false)

	w := s.do(http.MethodGet, "/api/v1/profile/", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPatch, "/api/v1/profile/", map[string]interface{}{"business_name": "Hop House"}, withToken(token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Hop House", decode(t, w)["business_name"])

	w = s.do(http.MethodPost, "/change_password", map[string]interface{}{
		"old_password": "wrong", "new_password": "malty-secret",
	}, withToken(token))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid Old Password", decode(t, w)["error"])

	w = s.do(http.MethodPost, "/change_password", map[string]interface{}{
		"old_password": "hoppy-secret", "new_password": "malty-secret",
	}, withToken(token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/token/", map[string]interface{}{"email": "ada@example.com", "password": "malty-secret"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPasswordRecoveryEndpoints(t *testing.T) {
	s := newTestServer(t)
	user, _ := s.user("ada@example.com", false)

	w := s.do(http.MethodPost, "/recover_password", map[string]interface{}{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/recover_password", map[string]interface{}{"email": "ada@example.com"})
	require.Equal(t, http.StatusOK, w.Code)

	var recovery models.Recovery
	require.NoError(t, s.db.Where("user_id = ?", user.ID).First(&recovery).Error)

	w = s.do(http.MethodPost, "/change_recover_password", map[string]interface{}{
		"username": "ada@example.com", "token": "bogus", "new_password": "malty-secret",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Could not authenticate", decode(t, w)["error"])

	w = s.do(http.MethodPost, "/change_recover_password", map[string]interface{}{
		"username": "ada@example.com", "token": recovery.Token, "new_password": "malty-secret",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/login", map[string]interface{}{"email": "ada@example.com", "password": "malty-secret"})
	assert.Equal(t, http.StatusOK, w.Code)
}
