package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dyluth/canvas/pkg/canvas"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry     *prometheus.Registry
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	purchases    *prometheus.CounterVec
}

func newMetrics(reg *prometheus.Registry) *metrics {
	m := &metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "canvas",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "canvas",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		purchases: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "canvas",
				Name:      "purchases_total",
				Help:      "Purchase attempts by outcome.",
			},
			[]string{"result"},
		),
	}
	reg.MustRegister(m.httpRequests, m.httpDuration, m.purchases)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *metrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.httpRequests.WithLabelValues(c.Request.Method, path, status).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

// observePurchase counts a Buy outcome.
func (m *metrics) observePurchase(err error) {
	m.purchases.WithLabelValues(purchaseResult(err)).Inc()
}

func purchaseResult(err error) string {
	switch {
	case err == nil, errors.Is(err, canvas.ErrEventNotPublished):
		return "committed"
	case canvas.IsAlreadyExists(err):
		return "already_exists"
	case canvas.IsInvariantViolation(err):
		return "invariant_violation"
	case errors.Is(err, canvas.ErrIndexOutOfRange),
		errors.Is(err, canvas.ErrInvalidColor),
		errors.Is(err, canvas.ErrEmptyIdentity):
		return "invalid"
	default:
		return "error"
	}
}
