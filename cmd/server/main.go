package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/navtrail/navtrail-backend/internal/adapter/httpapi"
	"github.com/navtrail/navtrail-backend/internal/adapter/navclient"
	"github.com/navtrail/navtrail-backend/internal/adapter/repository/postgres"
	"github.com/navtrail/navtrail-backend/internal/config"
	"github.com/navtrail/navtrail-backend/internal/ratelimit"
	"github.com/navtrail/navtrail-backend/internal/scheduler"
	"github.com/navtrail/navtrail-backend/internal/usecase/auth"
	"github.com/navtrail/navtrail-backend/internal/usecase/fund"
	"github.com/navtrail/navtrail-backend/internal/usecase/history"
	"github.com/navtrail/navtrail-backend/internal/usecase/navrefresh"
	"github.com/navtrail/navtrail-backend/internal/usecase/portfolio"
	"github.com/navtrail/navtrail-backend/internal/usecase/seriesload"
	"github.com/navtrail/navtrail-backend/internal/usecase/valuation"
)

func main() {
	// NAVs and money amounts render as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true

	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := newLogger(cfg)

	// 2. Setup database
	db, err := postgres.NewDB(cfg.DBConnString())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	// 3. Initialize repositories
	userRepo := postgres.NewUserRepository(db)
	purchaseRepo := postgres.NewPurchaseRepository(db)
	fundRepo := postgres.NewFundRepository(db)
	navRepo := postgres.NewNAVRepository(db)

	// 4. Initialize services
	provider := navclient.NewClient(cfg.NAVBaseURL, log)
	loader := seriesload.NewLoader(provider, log)

	loginAttempts := ratelimit.NewMemoryStore(cfg.LoginRateLimit, time.Minute)
	apiLimiter := ratelimit.NewMemoryStore(cfg.APIRateLimit, time.Minute)

	authService := auth.NewService(userRepo, loginAttempts, cfg.JWTSecret, log)
	portfolioService := portfolio.NewService(purchaseRepo, fundRepo, provider, loader, log)
	valuationService := valuation.NewService(purchaseRepo, loader, log)
	historyService := history.NewService(purchaseRepo, loader, log)
	fundService := fund.NewService(fundRepo, provider, log)

	// 5. Start the NAV refresh scheduler
	sched := scheduler.New(log)
	refreshJob := navrefresh.NewJob(purchaseRepo, fundRepo, navRepo, provider, log)
	if err := sched.AddJob(cfg.NAVRefreshSchedule, refreshJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register NAV refresh job")
	}
	sched.Start()

	// 6. Start HTTP server
	server := httpapi.New(httpapi.Config{
		Port:       cfg.Port,
		DevMode:    cfg.DevMode,
		Log:        log,
		Auth:       authService,
		Portfolio:  portfolioService,
		Valuation:  valuationService,
		History:    historyService,
		Funds:      fundService,
		APILimiter: apiLimiter,
	})

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	waitForShutdown(log, server, sched)
}

// newLogger builds the root logger from the configured level.
func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	if cfg.DevMode {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return logger
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down
// the server and the scheduler.
func waitForShutdown(log zerolog.Logger, server *httpapi.Server, sched *scheduler.Scheduler) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	sched.Stop()
	log.Info().Msg("Server stopped")
}
