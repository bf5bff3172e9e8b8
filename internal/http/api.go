package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"session-portal/internal/auth"
	"session-portal/internal/domain"
	"session-portal/internal/metrics"
	"session-portal/internal/validation"
)

// Sessions is the session service as seen by the transport.
type Sessions interface {
	Login(ctx context.Context, in validation.LoginInput) (*domain.Grant, error)
	Signup(ctx context.Context, in validation.SignupInput) (*domain.Grant, error)
	Restore(ctx context.Context, raw string) (*domain.PublicUser, domain.RestoreOutcome, error)
	Logout(ctx context.Context)
}

// Options carries the collaborators of the HTTP layer.
type Options struct {
	Sessions     Sessions
	Cookies      auth.CookieConfig
	Logger       *logrus.Logger
	Metrics      *metrics.Recorder
	Gatherer     prometheus.Gatherer
	AllowOrigins []string
}

// Handler wires HTTP routes to the session service.
type Handler struct {
	sessions     Sessions
	cookies      auth.CookieConfig
	logger       *logrus.Logger
	metrics      *metrics.Recorder
	gatherer     prometheus.Gatherer
	allowOrigins []string
	now          func() time.Time
}

func NewHandler(opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = logrus.New()
	}
	return &Handler{
		sessions:     opts.Sessions,
		cookies:      opts.Cookies,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
		gatherer:     opts.Gatherer,
		allowOrigins: opts.AllowOrigins,
		now:          time.Now,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(h.requestID(), h.accessLog(), h.recovery())
	if len(h.allowOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     h.allowOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	api := router.Group("/api")
	{
		api.POST("/session", h.login)
		api.DELETE("/session", h.logout)
		api.GET("/session", h.RestoreUser(), h.restore)

		api.POST("/users", h.signup)
		api.GET("/users/me", h.RestoreUser(), RequireAuth(), h.me)

		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}

	if h.gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	}
}
