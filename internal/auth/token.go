package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"brewshop/internal/models"

	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidToken = errors.New("invalid token")

type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

type Claims struct {
	UserID    uint      `json:"user_id"`
	Email     string    `json:"email"`
	IsStaff   bool      `json:"is_staff"`
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// Manager signs and verifies HS256 tokens. Login tokens are long-lived
// access tokens handed out by the login endpoint.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	loginTTL   time.Duration
	now        func() time.Time
}

func NewManager(secret string, accessTTL, refreshTTL, loginTTL time.Duration) *Manager {
	return &Manager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		loginTTL:   loginTTL,
		now:        time.Now,
	}
}

func (m *Manager) IssueAccess(user *models.User) (string, time.Time, error) {
	return m.issue(user, AccessToken, m.accessTTL)
}

func (m *Manager) IssueRefresh(user *models.User) (string, time.Time, error) {
	return m.issue(user, RefreshToken, m.refreshTTL)
}

func (m *Manager) IssueLogin(user *models.User) (string, time.Time, error) {
	return m.issue(user, AccessToken, m.loginTTL)
}

func (m *Manager) issue(user *models.User, typ TokenType, ttl time.Duration) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(ttl)
	claims := &Claims{
		UserID:    user.ID,
		Email:     user.Email,
		IsStaff:   user.IsStaff,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return s, exp, nil
}

// Parse verifies signature, expiry and that the token is of the wanted type.
func (m *Manager) Parse(tokenStr string, want TokenType) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != want {
		return nil, fmt.Errorf("%w: expected %s token", ErrInvalidToken, want)
	}
	return claims, nil
}
