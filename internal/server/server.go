package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/dyluth/canvas/pkg/canvas"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// IdentityHeader carries the buyer identity on POST /pixels.
const IdentityHeader = "X-Canvas-Identity"

// Pinger reports backend connectivity for /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server exposes a canvas.Store over HTTP.
type Server struct {
	store   canvas.Store
	pinger  Pinger
	logger  zerolog.Logger
	metrics *metrics
	router  *gin.Engine
	http    *http.Server
	addr    string
	started time.Time
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}

// New builds a server over store. pinger may be nil, in which case /healthz
// reports healthy without checking a backend.
func New(store canvas.Store, pinger Pinger, logger zerolog.Logger) *Server {
	s := &Server{
		store:   store,
		pinger:  pinger,
		logger:  logger,
		metrics: newMetrics(prometheus.NewRegistry()),
		started: time.Now(),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(logger))
	r.Use(s.metrics.middleware())
	s.router = r
	s.registerRoutes()

	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(s.metrics.handler()))
	s.router.GET("/info", s.handleInfo)
	s.router.GET("/colors", s.handleColors)
	s.router.GET("/pixels/:x/:y", s.handlePixel)
	s.router.POST("/pixels", s.handleBuy)
}

// Start binds addr and serves in the background.
// A bind failure (address in use, bad address) is returned before any
// goroutine starts.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	s.addr = ln.Addr().String()

	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Str("addr", s.addr).Msg("http server stopped")
		}
	}()

	s.logger.Info().Str("addr", s.addr).Msg("http server listening")
	return nil
}

// Addr returns the bound listen address once Start has succeeded.
func (s *Server) Addr() string {
	return s.addr
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
