// Package server exposes the conversion gateway over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/pricofy/omnicode/internal/domain"
	"github.com/pricofy/omnicode/internal/handler"
	"github.com/pricofy/omnicode/internal/languages"
)

// maxBodyBytes caps the size of a conversion request body.
const maxBodyBytes = "8M"

// Options configures a Server.
type Options struct {
	Handler   *handler.Handler
	Registry  *languages.Registry
	Gatherer  prometheus.Gatherer
	RateLimit float64
	RateBurst int
	Logger    *slog.Logger
}

// Server is the HTTP front of the gateway.
type Server struct {
	echo    *echo.Echo
	handler *handler.Handler
	logger  *slog.Logger
	limiter *clientLimiter
}

// New builds the echo instance and registers routes.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	registry := opts.Registry
	if registry == nil {
		registry = languages.Default()
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:    e,
		handler: opts.Handler,
		logger:  logger,
	}
	if opts.RateLimit > 0 {
		s.limiter = newClientLimiter(rate.Limit(opts.RateLimit), opts.RateBurst)
	}
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"authorization", "x-client-info", "apikey", "content-type"},
	}))
	e.Use(s.requestLogger)

	api := e.Group("/api")
	api.POST("/convert", s.convert, middleware.BodyLimit(maxBodyBytes), s.rateLimit)
	api.GET("/languages", func(c echo.Context) error {
		return c.JSON(http.StatusOK, registry.All())
	})

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return s
}

// ServeHTTP lets the server be used as a plain http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.logger.Info("http server listening", "addr", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) convert(c echo.Context) error {
	var req domain.ConversionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, domain.ErrorResponse{Error: "invalid JSON body"})
	}
	status, body := s.handler.Handle(c.Request().Context(), req)
	return c.JSON(status, body)
}

// handleError renders framework errors (404, 405, 413, recovered panics) with
// the same {"error": ...} body as the conversion endpoint.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	msg := "internal error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if m, ok := he.Message.(string); ok && m != "" {
			msg = m
		} else {
			msg = http.StatusText(status)
		}
	} else {
		s.logger.Error("unhandled request error", "path", c.Path(), "error", err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, domain.ErrorResponse{Error: msg})
	}
	if err != nil {
		s.logger.Warn("failed to write error response", "error", err)
	}
}

func (s *Server) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.limiter != nil && !s.limiter.allow(c.RealIP()) {
			return c.JSON(http.StatusTooManyRequests, domain.ErrorResponse{Error: "rate limit exceeded"})
		}
		return next(c)
	}
}

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		s.logger.Debug("http request",
			"method", c.Request().Method,
			"path", c.Path(),
			"status", c.Response().Status,
			"duration", time.Since(start),
		)
		return nil
	}
}

// limiterIdleTTL is how long an address's bucket survives without requests.
const limiterIdleTTL = 10 * time.Minute

// clientLimiter keeps a token bucket per client address. Buckets idle for
// longer than the TTL are swept on access.
type clientLimiter struct {
	limit rate.Limit
	burst int
	ttl   time.Duration
	now   func() time.Time

	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	lastSweep time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiter(limit rate.Limit, burst int) *clientLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &clientLimiter{
		limit:    limit,
		burst:    burst,
		ttl:      limiterIdleTTL,
		now:      time.Now,
		limiters: make(map[string]*limiterEntry),
	}
}

func (l *clientLimiter) allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	if now.Sub(l.lastSweep) >= l.ttl {
		for k, e := range l.limiters {
			if now.Sub(e.lastSeen) >= l.ttl {
				delete(l.limiters, k)
			}
		}
		l.lastSweep = now
	}
	e, ok := l.limiters[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = e
	}
	e.lastSeen = now
	l.mu.Unlock()

	return e.limiter.AllowN(now, 1)
}

// size returns the number of tracked addresses.
func (l *clientLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}
