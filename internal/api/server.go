package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"slotbook/internal/config"
	"slotbook/internal/domain"
	"slotbook/internal/service"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Deps are the services the HTTP API serves.
type Deps struct {
	Bookings *service.BookingService
	Payments *service.PaymentService
	Catalog  *service.CatalogService
	Site     *service.SiteConfigService
	Students *service.StudentService
	Auth     *service.AuthService
	State    domain.StateRepository
	// Ready reports whether dependencies such as the database are reachable.
	Ready func(ctx context.Context) error
	// UploadsDir is served under /uploads/ when set.
	UploadsDir string
}

// HTTPServer exposes the booking API under /api.
type HTTPServer struct {
	cfg      config.APIConfig
	deps     Deps
	router   *mux.Router
	server   *http.Server
	logger   *zerolog.Logger
	maxBytes int64
}

func NewHTTPServer(cfg config.APIConfig, maxUploadMB int64, deps Deps, logger *zerolog.Logger) *HTTPServer {
	l := logger.With().Str("component", "http").Logger()
	if maxUploadMB <= 0 {
		maxUploadMB = 5
	}
	srv := &HTTPServer{
		cfg:      cfg,
		deps:     deps,
		router:   mux.NewRouter(),
		logger:   &l,
		maxBytes: maxUploadMB << 20,
	}
	srv.routes()

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		// CORS wraps the router so preflight requests never need a matching route.
		Handler:           corsMiddleware(cfg.CORS.AllowedOrigins)(srv.router),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return srv
}

func (s *HTTPServer) routes() {
	r := s.router
	r.Use(loggingMiddleware(s.logger))

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet).Name("healthz")
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet).Name("readyz")
	if s.deps.UploadsDir != "" {
		r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.deps.UploadsDir)))).Name("uploads")
	}

	api := r.PathPrefix("/api").Subrouter()
	api.Use(newRateLimiter(s.cfg.RateLimit).Wrap)
	admin := func(h http.HandlerFunc) http.HandlerFunc { return adminOnly(s.deps.Auth, h) }

	// /bookings/all must be registered before /bookings/{id}.
	api.HandleFunc("/bookings", idempotent(s.deps.State, s.logger, s.handleCreateBooking)).Methods(http.MethodPost).Name("bookings.create")
	api.HandleFunc("/bookings", admin(s.handleListBookings)).Methods(http.MethodGet).Name("bookings.list")
	api.HandleFunc("/bookings/all", admin(s.handleDeleteAll)).Methods(http.MethodDelete).Name("bookings.delete_all")
	api.HandleFunc("/bookings/by-package/{price}", admin(s.handleDeleteByPackage)).Methods(http.MethodDelete).Name("bookings.delete_package")
	api.HandleFunc("/bookings/{id}/toggle-paid", admin(s.handleTogglePaid)).Methods(http.MethodPatch).Name("bookings.toggle_paid")
	api.HandleFunc("/bookings/{id}", admin(s.handleDeleteBooking)).Methods(http.MethodDelete).Name("bookings.delete")

	api.HandleFunc("/payments/create-order", idempotent(s.deps.State, s.logger, s.handleCreateOrder)).Methods(http.MethodPost).Name("payments.create_order")
	api.HandleFunc("/payments/verify", s.handleVerify).Methods(http.MethodPost).Name("payments.verify")
	api.HandleFunc("/payments/price-breakdown/{amount}", s.handlePriceBreakdown).Methods(http.MethodGet).Name("payments.price_breakdown")

	api.HandleFunc("/packages", s.handleListPackages).Methods(http.MethodGet).Name("packages.list")
	api.HandleFunc("/packages", admin(s.handleReplacePackages)).Methods(http.MethodPut).Name("packages.replace")

	api.HandleFunc("/config/banner", s.handleGetBanner).Methods(http.MethodGet).Name("config.banner")
	api.HandleFunc("/config/banner", admin(s.handleUploadBanner)).Methods(http.MethodPost).Name("config.banner_upload")
	api.HandleFunc("/config/workshop", s.handleGetWorkshop).Methods(http.MethodGet).Name("config.workshop")
	api.HandleFunc("/config/workshop", admin(s.handleUpdateWorkshop)).Methods(http.MethodPut).Name("config.workshop_update")
	api.HandleFunc("/config/workshop-banner", s.handleGetWorkshopBanner).Methods(http.MethodGet).Name("config.workshop_banner")
	api.HandleFunc("/config/workshop-banner", admin(s.handleUploadWorkshopBanner)).Methods(http.MethodPost).Name("config.workshop_banner_upload")

	api.HandleFunc("/students/register", s.handleRegisterStudent).Methods(http.MethodPost).Name("students.register")
	api.HandleFunc("/students/public", s.handlePublicStudents).Methods(http.MethodGet).Name("students.public")
	api.HandleFunc("/students", admin(s.handleListStudents)).Methods(http.MethodGet).Name("students.list")

	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost).Name("auth.login")
	api.HandleFunc("/auth/profile", admin(s.handleProfile)).Methods(http.MethodGet).Name("auth.profile")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
}

func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ready != nil {
		if err := s.deps.Ready(r.Context()); err != nil {
			s.logger.Warn().Err(err).Msg("Readiness check failed")
			writeError(w, http.StatusServiceUnavailable, "not ready")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
