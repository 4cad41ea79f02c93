package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/euroisufi/schweizer-handwerksplattform-sub000/api/controllers"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/api/routes"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/internal/accounts"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/internal/catalog"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/internal/credits"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/internal/ledger"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/internal/locks"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/internal/projects"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/config"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/db"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/logger"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/metrics"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/migrate"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/outbox"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	routerParams := routes.RouterParams{
		Config:    cfg,
		Logger:    logg,
		Readiness: map[string]controllers.Pinger{"db": dbClient},
		Gatherer:  prometheus.DefaultGatherer,
	}

	var locker locks.Locker = locks.NewLocal(cfg.Ledger.LockWait)
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		routerParams.Idempotency = redisClient
		routerParams.Counters = redisClient
		routerParams.Readiness["redis"] = redisClient

		if cfg.FeatureFlags.UseRedisLock {
			distributed, err := locks.NewRedis(locks.RedisParams{
				Store:  redisClient,
				Logger: logg,
				Wait:   cfg.Ledger.LockWait,
				TTL:    cfg.Ledger.LockTTL,
			})
			if err != nil {
				logg.Error(ctx, "failed to create redis lock", err)
				os.Exit(1)
			}
			locker = locks.Chain(locker, distributed)
		}
	}

	ledgerMetrics := metrics.NewLedgerMetrics(prometheus.DefaultRegisterer)
	routerParams.HTTPMetrics = metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	store, err := ledger.NewRepository(ledger.RepositoryParams{
		DB:           dbClient,
		Locker:       locker,
		Outbox:       outbox.NewService(outbox.NewRepository(dbClient.DB()), logg),
		Logger:       logg,
		Metrics:      ledgerMetrics,
		InitialGrant: cfg.Ledger.InitialGrant,
	})
	if err != nil {
		logg.Error(ctx, "failed to create ledger repository", err)
		os.Exit(1)
	}

	accountService, err := accounts.NewService(accounts.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(ctx, "failed to create account service", err)
		os.Exit(1)
	}

	creditService, err := credits.NewService(credits.ServiceParams{
		Store:            store,
		Accounts:         accountService,
		Projects:         projects.NewRepository(dbClient.DB()),
		Catalog:          catalog.Default(),
		Logger:           logg,
		Metrics:          ledgerMetrics,
		MaxUnlocksListed: cfg.Ledger.MaxUnlocksListed,
	})
	if err != nil {
		logg.Error(ctx, "failed to create credits service", err)
		os.Exit(1)
	}
	routerParams.Credits = creditService

	addr := ":" + cfg.App.Port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":        cfg.App.Env,
		"addr":       addr,
		"redis_lock": cfg.FeatureFlags.UseRedisLock && cfg.Redis.Enabled(),
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(routerParams),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(logCtx, "api server shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(logCtx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(logCtx, "api server stopped")
}
