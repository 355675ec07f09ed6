package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"brewshop/internal/middleware"
	"brewshop/internal/models"
	"brewshop/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const SessionCookie = "sessionid"

// SessionStore keeps anonymous shopper sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, ttl time.Duration) (string, error)
	TouchSession(ctx context.Context, key string, ttl time.Duration) (bool, error)
	DeleteSession(ctx context.Context, key string) error
}

// Pinger is anything whose connection can be checked.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Sessions resolves who a request acts for: the authenticated user, or an
// anonymous session identified by cookie or header.
type Sessions struct {
	store SessionStore
	ttl   time.Duration
}

func NewSessions(store SessionStore, ttl time.Duration) *Sessions {
	return &Sessions{store: store, ttl: ttl}
}

func requestKey(c *gin.Context) string {
	if key := c.GetHeader(middleware.SessionHeader); key != "" {
		return key
	}
	if key, err := c.Cookie(SessionCookie); err == nil {
		return key
	}
	return ""
}

// current returns the viewer without creating a session. ok is false for an
// anonymous request with no live session.
func (s *Sessions) current(c *gin.Context) (services.Viewer, bool, error) {
	if claims, ok := middleware.ClaimsFromContext(c); ok {
		return services.Viewer{
			Owner:  models.UserOwner(claims.UserID),
			UserID: claims.UserID,
			Email:  claims.Email,
			Staff:  claims.IsStaff,
		}, true, nil
	}

	key := requestKey(c)
	if key == "" {
		return services.Viewer{}, false, nil
	}
	alive, err := s.store.TouchSession(c.Request.Context(), key, s.ttl)
	if err != nil || !alive {
		return services.Viewer{}, false, err
	}
	s.setKey(c, key)
	return services.SessionViewer(key), true, nil
}

// resolve is current, creating an anonymous session when there is none.
func (s *Sessions) resolve(c *gin.Context) (services.Viewer, error) {
	viewer, ok, err := s.current(c)
	if err != nil || ok {
		return viewer, err
	}

	key, err := s.store.CreateSession(c.Request.Context(), s.ttl)
	if err != nil {
		return services.Viewer{}, err
	}
	s.setKey(c, key)
	return services.SessionViewer(key), nil
}

func (s *Sessions) setKey(c *gin.Context, key string) {
	c.SetCookie(SessionCookie, key, int(s.ttl.Seconds()), "/", "", false, true)
	c.Header(middleware.SessionHeader, key)
}

type APIHandler struct {
	sessions *Sessions
	db       *gorm.DB
	cache    Pinger
}

func NewAPIHandler(sessions *Sessions, db *gorm.DB, cache Pinger) *APIHandler {
	return &APIHandler{
		sessions: sessions,
		db:       db,
		cache:    cache,
	}
}

// Session management endpoints
func (h *APIHandler) GetSession(c *gin.Context) {
	viewer, ok, err := h.sessions.current(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok || viewer.Owner.Kind != models.OwnerSession {
		c.JSON(http.StatusNotFound, gin.H{"error": "No active session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_key": viewer.Owner.Key,
		"status":      "active",
	})
}

func (h *APIHandler) CreateSession(c *gin.Context) {
	viewer, err := h.sessions.resolve(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if viewer.Owner.Kind != models.OwnerSession {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Authenticated requests do not use sessions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_key": viewer.Owner.Key,
		"status":      "created",
	})
}

func (h *APIHandler) DeleteSession(c *gin.Context) {
	key := requestKey(c)
	if key == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "No active session"})
		return
	}

	if err := h.sessions.store.DeleteSession(c.Request.Context(), key); err != nil {
		respondError(c, err)
		return
	}
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"session_key": key,
		"status":      "deleted",
	})
}

// Health reports whether the database and redis answer.
func (h *APIHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{"database": "ok", "redis": "ok"}
	healthy := true

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		status["database"] = err.Error()
		healthy = false
	}

	if h.cache == nil {
		err = errors.New("not configured")
	} else {
		err = h.cache.Ping(ctx)
	}
	if err != nil {
		status["redis"] = err.Error()
		healthy = false
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, status)
		return
	}
	c.JSON(http.StatusOK, status)
}
