// Package httpapi exposes the backend over HTTP with chi.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/navtrail/navtrail-backend/internal/domain"
	"github.com/navtrail/navtrail-backend/internal/ratelimit"
	"github.com/navtrail/navtrail-backend/internal/usecase/auth"
	"github.com/navtrail/navtrail-backend/internal/usecase/fund"
	"github.com/navtrail/navtrail-backend/internal/usecase/history"
	"github.com/navtrail/navtrail-backend/internal/usecase/portfolio"
	"github.com/navtrail/navtrail-backend/internal/usecase/valuation"
)

// AuthService is the authentication surface the API consumes.
type AuthService interface {
	TokenVerifier
	Signup(ctx context.Context, name, email, password string) (*auth.Result, error)
	Login(ctx context.Context, email, password, clientIP string) (*auth.Result, error)
}

// PortfolioService mutates and lists a user's holdings.
type PortfolioService interface {
	AddPurchase(ctx context.Context, userID uuid.UUID, schemeCode int, units decimal.Decimal, purchaseDateStr string) (*domain.Purchase, error)
	ListPositions(ctx context.Context, userID uuid.UUID) ([]portfolio.Position, error)
	RemovePurchase(ctx context.Context, userID uuid.UUID, schemeCode int, purchaseDateStr string) error
}

// ValuationService computes the current portfolio report.
type ValuationService interface {
	PortfolioValue(ctx context.Context, userID uuid.UUID) (*valuation.Valuation, error)
}

// HistoryService reconstructs the day-by-day portfolio series.
type HistoryService interface {
	PortfolioHistory(ctx context.Context, userID uuid.UUID, startStr, endStr string) ([]history.Snapshot, error)
}

// FundService serves the fund catalogue.
type FundService interface {
	List(ctx context.Context, search string, page, limit int) (*fund.Page, error)
	History(ctx context.Context, schemeCode int) (*fund.SchemeHistory, error)
}

// Config holds server configuration
type Config struct {
	Port    int
	DevMode bool
	Log     zerolog.Logger

	Auth      AuthService
	Portfolio PortfolioService
	Valuation ValuationService
	History   HistoryService
	Funds     FundService

	// APILimiter bounds authenticated and fund-catalogue traffic.
	APILimiter ratelimit.Store
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger

	auth      AuthService
	portfolio PortfolioService
	valuation ValuationService
	history   HistoryService
	funds     FundService
	limiter   ratelimit.Store
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		auth:      cfg.Auth,
		portfolio: cfg.Portfolio,
		valuation: cfg.Valuation,
		history:   cfg.History,
		funds:     cfg.Funds,
		limiter:   cfg.APILimiter,
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", s.handleSignup)
			r.Post("/login", s.handleLogin)
		})

		r.Route("/portfolio", func(r chi.Router) {
			r.Use(Authenticator(s.auth))
			r.Use(RateLimit(s.limiter, UserKey))

			r.Post("/add", s.handleAddPurchase)
			r.Get("/list", s.handleListPositions)
			r.Get("/value", s.handlePortfolioValue)
			r.Get("/history", s.handlePortfolioHistory)
			r.Delete("/remove", s.handleRemovePurchase)
		})

		r.Route("/funds", func(r chi.Router) {
			r.Use(RateLimit(s.limiter, IPKey))

			r.Get("/", s.handleListFunds)
			r.Get("/nav", s.handleFundNAV)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("Request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondMessage(w, http.StatusOK, "ok", nil)
}
