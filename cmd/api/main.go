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

	"github.com/meditrack-ph/meditrack-backend/api/routes"
	"github.com/meditrack-ph/meditrack-backend/internal/auth"
	"github.com/meditrack-ph/meditrack-backend/internal/cart"
	"github.com/meditrack-ph/meditrack-backend/internal/cartsync"
	"github.com/meditrack-ph/meditrack-backend/internal/catalog"
	"github.com/meditrack-ph/meditrack-backend/internal/checkout"
	"github.com/meditrack-ph/meditrack-backend/internal/reservations"
	"github.com/meditrack-ph/meditrack-backend/internal/transactions"
	"github.com/meditrack-ph/meditrack-backend/internal/users"
	"github.com/meditrack-ph/meditrack-backend/pkg/config"
	"github.com/meditrack-ph/meditrack-backend/pkg/db"
	"github.com/meditrack-ph/meditrack-backend/pkg/docstore"
	"github.com/meditrack-ph/meditrack-backend/pkg/logger"
	"github.com/meditrack-ph/meditrack-backend/pkg/metrics"
	"github.com/meditrack-ph/meditrack-backend/pkg/migrate"
	"github.com/meditrack-ph/meditrack-backend/pkg/redis"
)

const shutdownGrace = 10 * time.Second

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

	docs, err := docstore.NewRedisStore(redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create document store", err)
		os.Exit(1)
	}
	remoteStore, err := cartsync.NewStore(docs)
	if err != nil {
		logg.Error(context.Background(), "failed to create remote cart store", err)
		os.Exit(1)
	}
	syncAdapter, err := cartsync.NewAdapter(cartsync.AdapterParams{
		Store:   remoteStore,
		Config:  cfg.Sync,
		Logger:  logg,
		Metrics: metrics.NewSyncMetrics(prometheus.DefaultRegisterer),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create sync adapter", err)
		os.Exit(1)
	}
	syncAdapter.Start(context.Background())
	defer syncAdapter.Stop()

	registry, err := cart.NewRegistry(remoteStore, syncAdapter, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart registry", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.ServiceParams{
		Repo: catalog.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	txRepo, err := transactions.NewRepository(docs)
	if err != nil {
		logg.Error(context.Background(), "failed to create transactions repository", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(checkout.Params{
		Records: txRepo,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	reservationsService, err := reservations.NewService(reservations.ServiceParams{
		Repo:    reservations.NewRepository(dbClient.DB()),
		Catalog: catalogService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reservations service", err)
		os.Exit(1)
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

	pingers := map[string]db.Pinger{
		"postgres": dbClient,
		"redis":    redisClient,
	}
	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			pingers,
			registry,
			authService,
			catalogService,
			checkoutService,
			reservationsService,
			txRepo,
		),
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
