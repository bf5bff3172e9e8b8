package http

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"session-portal/internal/apperr"
)

// writeError reports err as JSON. Internal causes are logged, never sent.
func (h *Handler) writeError(c *gin.Context, err error) {
	appErr := apperr.As(err)
	if appErr.Kind == apperr.KindInternal {
		h.logger.WithFields(logrus.Fields{
			"request_id": requestIDFrom(c),
			"path":       c.Request.URL.Path,
		}).WithError(appErr.Err).Error("request failed")
	}
	c.JSON(appErr.Status, appErr.Body())
}
