package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/amartel/rentaride-backend/api/routes"
	"github.com/amartel/rentaride-backend/internal/agencies"
	"github.com/amartel/rentaride-backend/internal/auth"
	"github.com/amartel/rentaride-backend/internal/messaging"
	"github.com/amartel/rentaride-backend/internal/reservations"
	"github.com/amartel/rentaride-backend/internal/subscriptions"
	"github.com/amartel/rentaride-backend/internal/users"
	"github.com/amartel/rentaride-backend/internal/vehicles"
	"github.com/amartel/rentaride-backend/pkg/assistant"
	"github.com/amartel/rentaride-backend/pkg/auth/session"
	"github.com/amartel/rentaride-backend/pkg/config"
	"github.com/amartel/rentaride-backend/pkg/db"
	"github.com/amartel/rentaride-backend/pkg/logger"
	"github.com/amartel/rentaride-backend/pkg/metrics"
	"github.com/amartel/rentaride-backend/pkg/migrate"
	"github.com/amartel/rentaride-backend/pkg/outbox"
	"github.com/amartel/rentaride-backend/pkg/redis"
	"github.com/amartel/rentaride-backend/pkg/stripe"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to validate stripe configuration", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	agencyRepo := agencies.NewRepository(dbClient.DB())
	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		AgencyRepo:     agencyRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	vehicleService, err := vehicles.NewService(vehicles.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create vehicle service", err)
		os.Exit(1)
	}

	reservationParams := reservations.ServiceParams{
		Repo:     reservations.NewRepository(dbClient.DB()),
		Vehicles: vehicles.NewRepository(dbClient.DB()),
		Tx:       dbClient,
		Outbox:   outboxService,
		Logger:   logg,
	}
	subscriptionParams := subscriptions.ServiceParams{
		Repo:     subscriptions.NewRepository(dbClient.DB()),
		Users:    userRepo,
		Agencies: agencyRepo,
		Tx:       dbClient,
		Outbox:   outboxService,
		Stripe:   cfg.Stripe,
		Logger:   logg,
	}
	if stripeClient.Configured() {
		reservationParams.Payments = reservations.NewStripePaymentClient(cfg.Stripe.APIKey)
		subscriptionParams.Billing = subscriptions.NewStripeSubscriptionClient(cfg.Stripe.APIKey)
	}

	reservationService, err := reservations.NewService(reservationParams)
	if err != nil {
		logg.Error(context.Background(), "failed to create reservation service", err)
		os.Exit(1)
	}

	subscriptionService, err := subscriptions.NewService(subscriptionParams)
	if err != nil {
		logg.Error(context.Background(), "failed to create subscription service", err)
		os.Exit(1)
	}

	messagingService, err := messaging.NewService(messaging.NewRepository(dbClient.DB()), agencyRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create messaging service", err)
		os.Exit(1)
	}

	var assistantClient *assistant.Client
	if cfg.Assistant.APIKey != "" {
		opts := []assistant.Option{assistant.WithModel(cfg.Assistant.Model)}
		if cfg.Assistant.BaseURL != "" {
			opts = append(opts, assistant.WithBaseURL(cfg.Assistant.BaseURL))
		}
		assistantClient, err = assistant.NewClient(cfg.Assistant.APIKey, opts...)
		if err != nil {
			logg.Error(context.Background(), "failed to create assistant client", err)
			os.Exit(1)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:          cfg,
			Logger:          logg,
			Redis:           redisClient,
			DBPinger:        dbClient,
			SessionVerifier: sessionManager,
			HTTPMetrics:     metrics.NewHTTPMetrics(prometheus.DefaultRegisterer),
			AuthService:     authService,
			RegisterService: registerService,
			Vehicles:        vehicleService,
			Reservations:    reservationService,
			Subscriptions:   subscriptionService,
			Messaging:       messagingService,
			Assistant:       assistantClient,
		}),
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-shutdown:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}
