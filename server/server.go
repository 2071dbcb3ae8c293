// Package server is chatrelay's HTTP boundary (spec §6.1, §6.7, §6.8): the
// inbound chat endpoint that fronts the orchestrator, a thin admin CRUD
// surface over the §3 data model, and health/metrics exporters. It is
// deliberately the only package that knows about HTTP status codes and
// JSON envelopes — every component below it returns plain Go values.
package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/hrygo/chatrelay/internal/profile"
	"github.com/hrygo/chatrelay/metrics"
	"github.com/hrygo/chatrelay/orchestrator"
	"github.com/hrygo/chatrelay/plugin/telegram"
	"github.com/hrygo/chatrelay/store"
)

// Server wraps an echo.Echo instance wired with chatrelay's routes. It is
// constructed once at startup with explicit dependencies (spec §9: no
// global singletons), grounded on the teacher's APIV1Service construction
// in server/router/api/v1/v1.go.
type Server struct {
	echo     *echo.Echo
	profile  *profile.Profile
	store    *store.Store
	handler  *orchestrator.Handler
	metrics  *metrics.PrometheusExporter
	telegram *telegram.Intake
}

// New constructs a Server. metricsExporter may be nil to disable /metrics.
func New(p *profile.Profile, db *store.Store, handler *orchestrator.Handler, metricsExporter *metrics.PrometheusExporter) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORS())

	s := &Server{echo: e, profile: p, store: db, handler: handler, metrics: metricsExporter}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	if s.metrics != nil {
		s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}

	chat := s.echo.Group("/api/v1/chat")
	if s.profile.PlatformAccessToken != "" {
		chat.Use(bearerAuth(s.profile.PlatformAccessToken))
	}
	chat.POST("/message", s.handleChatMessage)

	admin := s.echo.Group("/api/v1/admin")
	if s.profile.AdminAccessToken != "" {
		admin.Use(bearerAuth(s.profile.AdminAccessToken))
	}
	registerAdminRoutes(admin, s.store)
}

// WithTelegramIntake attaches the optional Telegram intake channel
// (SPEC_FULL §6 "Supplemented surface"), registering its webhook route.
// Returns the Server for chaining.
func (s *Server) WithTelegramIntake(intake *telegram.Intake) *Server {
	s.telegram = intake
	s.echo.POST("/webhook/telegram", s.handleTelegramWebhook)
	return s
}

func (s *Server) handleTelegramWebhook(c echo.Context) error {
	resp, err := s.telegram.HandleWebhook(c.Request().Context(), c.Request())
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorEnvelope{Success: false, Error: err.Error()})
	}
	return c.JSON(http.StatusOK, resp)
}

// ServeHTTP lets *Server be used directly as an http.Handler (tests drive
// it through httptest.NewServer without a real listener).
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"status": "ok"})
}

// Start begins serving HTTP. It blocks until the listener stops; callers
// run it on its own goroutine and select on ctx.Done() (grounded on the
// teacher's cmd/divinesense/main.go Start/Shutdown pairing).
func (s *Server) Start(_ context.Context) error {
	if s.profile.UNIXSock != "" {
		return s.echo.Start(s.profile.UNIXSock)
	}
	addr := s.profile.Addr + ":" + strconv.Itoa(s.profile.Port)
	return s.echo.Start(addr)
}

// Shutdown gracefully stops the HTTP server within a fixed grace period.
func (s *Server) Shutdown(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, 10*time.Second)
	defer cancel()
	if err := s.echo.Shutdown(ctx); err != nil {
		s.echo.Logger.Error(err)
	}
}
