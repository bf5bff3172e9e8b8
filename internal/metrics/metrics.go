package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"session-portal/internal/domain"
)

// Login outcomes.
const (
	LoginSucceeded = "success"
	LoginRejected  = "invalid_credentials"
	LoginInvalid   = "validation_error"
	LoginErrored   = "error"
)

// Recorder holds the session service collectors.
type Recorder struct {
	logins   *prometheus.CounterVec
	restores *prometheus.CounterVec
	logouts  prometheus.Counter
	requests *prometheus.HistogramVec
}

func NewRecorder() *Recorder {
	return &Recorder{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "session_login_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		restores: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "session_restore_total",
			Help: "Session restorations by outcome",
		}, []string{"outcome"}),
		logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "session_logout_total",
			Help: "Logout requests",
		}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// Register registers the collectors on reg (or the default registerer if nil).
// Collectors that are already registered are not an error.
func (r *Recorder) Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{r.logins, r.restores, r.logouts, r.requests} {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				return err
			}
		}
	}
	return nil
}

func (r *Recorder) LoginAttempt(outcome string) {
	r.logins.WithLabelValues(outcome).Inc()
}

func (r *Recorder) Restore(outcome domain.RestoreOutcome) {
	r.restores.WithLabelValues(string(outcome)).Inc()
}

func (r *Recorder) Logout() {
	r.logouts.Inc()
}

func (r *Recorder) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	r.requests.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
