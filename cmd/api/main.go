package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/app"
	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/checkout"
	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/clock"
	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/config"
	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/notify"
	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/pricing"
	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/storage/postgres"
	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/telemetry"
	transporthttp "github.com/julianoleite90/evemaster-finalizada-sub000/internal/transport/http"
	"github.com/julianoleite90/evemaster-finalizada-sub000/migrations"
)

func main() {
	logger := log.Default()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		logger.Fatalf("db ping: %v", err)
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}

	clk := clock.NewSystem()
	engine := pricing.NewEngine(cfg.ServiceFeeAmount())
	metrics := telemetry.New()

	notifier := notify.NewKafkaNotifier(strings.Join(cfg.KafkaBrokers, ","), cfg.ConfirmationTopic, logger)
	defer func() { _ = notifier.Close() }()
	if !notifier.Enabled() {
		logger.Printf("WARN: KAFKA_BROKERS not set, confirmations will only be logged")
	}

	catalogRepo := postgres.NewCatalogRepository(pool)
	identityRepo := postgres.NewIdentityRepository(pool)
	registrationRepo := postgres.NewRegistrationRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)
	inventoryRepo := postgres.NewInventoryRepository(pool)
	clubRepo := postgres.NewClubRepository(pool)
	profileRepo := postgres.NewProfileRepository(pool)
	affiliateRepo := postgres.NewAffiliateRepository(pool)
	adminRepo := postgres.NewAdminRepository(pool)

	cartSvc := app.NewCartService(catalogRepo, clubRepo, affiliateRepo, clk)
	submitSvc := app.NewSubmissionService(app.SubmissionDeps{
		Catalog:       catalogRepo,
		Identities:    identityRepo,
		Registrations: registrationRepo,
		Ledger:        ledgerRepo,
		Inventory:     inventoryRepo,
		Clubs:         clubRepo,
		Profiles:      profileRepo,
		Notifier:      notifier,
	}, engine, clk, logger, metrics)
	adminSvc := app.NewAdminService(adminRepo, clk)

	profileDirectory := struct {
		*postgres.IdentityRepository
		*postgres.ProfileRepository
	}{identityRepo, profileRepo}

	handler := transporthttp.NewRouter(transporthttp.RouterDeps{
		Checkout:    transporthttp.NewCheckoutHandler(checkout.NewStore(), cartSvc, submitSvc, profileDirectory, engine, clk),
		Admin:       transporthttp.NewAdminHandler(adminSvc),
		Metrics:     metrics,
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	logger.Printf("api listening on :%s", cfg.Port)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("server error: %v", err)
		}
	case <-stopCtx.Done():
		logger.Printf("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Printf("server shutdown error: %v", err)
	}
	logger.Printf("server stopped")
}
