package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"tanapark/internal/app"
	"tanapark/internal/config"
	"tanapark/internal/gateway"
	"tanapark/internal/handler"
	internalRedis "tanapark/internal/redis"
	"tanapark/internal/repository/postgres"
	"tanapark/internal/service"
	"tanapark/internal/sms"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "tanapark").Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize New Relic")
		} else {
			log.Info().Str("app", cfg.NewRelic.AppName).Msg("New Relic enabled")
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to Redis")

	// Wire dependencies.
	server, checkoutService := wireServer(db, redisClient, nrApp, cfg, log)

	// Background sweep of abandoned package payments.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go checkoutService.RunPendingSweeper(sweepCtx, cfg.Payment.SweepInterval)

	// Start server in goroutine.
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}

// wireServer wires all dependencies and returns the HTTP server plus the
// checkout service for background work.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config, log zerolog.Logger) (*http.Server, *service.CheckoutService) {
	// Initialize Redis stores.
	sessionStore := internalRedis.NewSessionStore(redisClient)
	lockStore := internalRedis.NewLockStore(redisClient)

	// Initialize repositories.
	vehicleRepo := postgres.NewVehicleRepository(db)
	pendingRepo := postgres.NewPendingPaymentRepository(db)
	pricingRepo := postgres.NewPricingRepository(db)
	valetRepo := postgres.NewValetRepository(db)

	// Initialize external clients.
	chapaClient := gateway.NewClient(cfg.Chapa.BaseURL, cfg.Chapa.SecretKey, cfg.Chapa.PublicKey)
	smsClient := sms.NewClient(cfg.SMS.Endpoint, cfg.SMS.APIKey, cfg.SMS.Sender)

	// Initialize services.
	notificationService := service.NewNotificationService(smsClient, log)
	feeCalculator := service.NewFeeCalculator()
	checkoutService := service.NewCheckoutService(
		vehicleRepo, pendingRepo, pricingRepo, valetRepo,
		chapaClient, feeCalculator, sessionStore, lockStore,
		notificationService, log,
		service.CheckoutConfig{
			Currency:          cfg.Payment.Currency,
			VerifyInterval:    cfg.Payment.VerifyInterval,
			VerifyMaxAttempts: cfg.Payment.VerifyMaxAttempts,
			PendingTTL:        cfg.Payment.PendingTTL,
		},
	)
	vehicleService := service.NewVehicleService(vehicleRepo, valetRepo, notificationService, log)

	// Initialize handlers.
	vehicleHandler := handler.NewVehicleHandler(vehicleService)
	paymentHandler := handler.NewPaymentHandler(checkoutService)
	pricingHandler := handler.NewPricingHandler(pricingRepo)
	valetHandler := handler.NewValetHandler(valetRepo)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		VehicleHandler: vehicleHandler,
		PaymentHandler: paymentHandler,
		PricingHandler: pricingHandler,
		ValetHandler:   valetHandler,
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, checkoutService
}
