package http

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"session-portal/internal/apperr"
	"session-portal/internal/domain"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	currentUserKey  = "user"
	sessionStateKey = "session_state"
)

// CurrentUser returns the user bound to the request by RestoreUser.
func CurrentUser(c *gin.Context) (*domain.PublicUser, bool) {
	v, exists := c.Get(currentUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*domain.PublicUser)
	return user, ok && user != nil
}

// RestoreUser resolves the session cookie and binds the user, if any, into the
// request context. Anonymous requests continue untouched; a token whose user
// is gone gets its cookie cleared.
func (h *Handler) RestoreUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, _ := c.Cookie(h.cookies.CookieName())

		user, outcome, err := h.sessions.Restore(c.Request.Context(), raw)
		if err != nil {
			h.writeError(c, err)
			c.Abort()
			return
		}

		c.Set(sessionStateKey, outcome.State())
		if outcome == domain.RestoreStale {
			h.clearSession(c)
		}
		if user != nil {
			c.Set(currentUserKey, user)
		}
		c.Next()
	}
}

// RequireAuth rejects requests RestoreUser left anonymous.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			body := apperr.Authentication(apperr.TitleUnauthorized, "Authentication required").Body()
			c.AbortWithStatusJSON(http.StatusUnauthorized, body)
			return
		}
		c.Next()
	}
}

func (h *Handler) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// recovery turns a handler panic into the generic JSON 500.
func (h *Handler) recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		h.writeError(c, apperr.Internal(fmt.Errorf("panic: %v", recovered)))
		c.Abort()
	})
}

func (h *Handler) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		status := c.Writer.Status()
		if h.metrics != nil {
			h.metrics.ObserveRequest(c.Request.Method, c.FullPath(), status, elapsed)
		}

		entry := h.logger.WithFields(logrus.Fields{
			"request_id": requestIDFrom(c),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"duration":   elapsed.String(),
			"client_ip":  c.ClientIP(),
		})
		if state, ok := c.Get(sessionStateKey); ok {
			entry = entry.WithField("session", state)
		}
		if status >= http.StatusInternalServerError {
			entry.Warn("http request")
			return
		}
		entry.Info("http request")
	}
}
