package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"session-portal/internal/domain"
	"session-portal/internal/validation"
)

type userResponse struct {
	User *domain.PublicUser `json:"user"`
}

func (h *Handler) login(c *gin.Context) {
	var req validation.LoginInput
	if !h.bindJSON(c, &req) {
		return
	}

	grant, err := h.sessions.Login(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"request_id": requestIDFrom(c),
		"user_id":    grant.User.ID,
	}).Info("user logged in")
	h.grantSession(c, grant)
}

func (h *Handler) signup(c *gin.Context) {
	var req validation.SignupInput
	if !h.bindJSON(c, &req) {
		return
	}

	grant, err := h.sessions.Signup(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"request_id": requestIDFrom(c),
		"user_id":    grant.User.ID,
	}).Info("user signed up")
	h.grantSession(c, grant)
}

// grantSession writes the cookie before the body so both commit together.
func (h *Handler) grantSession(c *gin.Context, grant *domain.Grant) {
	http.SetCookie(c.Writer, h.cookies.SessionCookie(grant.Token, grant.ExpiresAt, h.now()))
	noStore(c)
	c.JSON(http.StatusOK, userResponse{User: grant.User})
}

func (h *Handler) logout(c *gin.Context) {
	h.sessions.Logout(c.Request.Context())
	h.clearSession(c)
	noStore(c)
	c.JSON(http.StatusOK, gin.H{"message": "success"})
}

func (h *Handler) restore(c *gin.Context) {
	noStore(c)
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, userResponse{User: user})
}

func (h *Handler) me(c *gin.Context) {
	user, _ := CurrentUser(c)
	noStore(c)
	c.JSON(http.StatusOK, userResponse{User: user})
}

func (h *Handler) clearSession(c *gin.Context) {
	http.SetCookie(c.Writer, h.cookies.DeletionCookie())
}

// bindJSON decodes the body into req. An empty body decodes to the zero
// value so the validator reports every missing field.
func (h *Handler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(c, validation.Malformed())
		return false
	}
	return true
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
