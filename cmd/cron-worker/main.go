package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/euroisufi/schweizer-handwerksplattform-sub000/internal/cron"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/internal/ledger"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/internal/locks"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/config"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/db"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/logger"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/metrics"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/migrate"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/outbox"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/redis"
)

func main() {
	once := flag.Bool("once", false, "run every job a single time and exit")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})

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

	var lock cron.Lock = cron.NewLocalLock()
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
		lock, err = cron.NewRedisLock(redisClient, cfg.App.Env, 0)
		if err != nil {
			logg.Error(ctx, "failed to create cron lock", err)
			os.Exit(1)
		}
	}

	outboxRepo := outbox.NewRepository(dbClient.DB())
	ledgerMetrics := metrics.NewLedgerMetrics(prometheus.DefaultRegisterer)
	// The audit only reads; the local locker is never taken.
	ledgerRepo, err := ledger.NewRepository(ledger.RepositoryParams{
		DB:           dbClient,
		Locker:       locks.NewLocal(cfg.Ledger.LockWait),
		Outbox:       outbox.NewService(outboxRepo, logg),
		Logger:       logg,
		Metrics:      ledgerMetrics,
		InitialGrant: cfg.Ledger.InitialGrant,
	})
	if err != nil {
		logg.Error(ctx, "failed to create ledger repository", err)
		os.Exit(1)
	}

	auditJob, err := cron.NewLedgerAuditJob(cron.LedgerAuditJobParams{
		Logger:    logg,
		Auditor:   ledgerRepo,
		Metrics:   ledgerMetrics,
		BatchSize: cfg.Cron.AuditBatchSize,
	})
	if err != nil {
		logg.Error(ctx, "failed to create ledger audit job", err)
		os.Exit(1)
	}
	retentionJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: outboxRepo,
		Retention:  cfg.Cron.RetentionDays,
	})
	if err != nil {
		logg.Error(ctx, "failed to create outbox retention job", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:     logg,
		Registry:   cron.NewRegistry(auditJob, retentionJob),
		Lock:       lock,
		Metrics:    metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval:   cfg.Cron.Interval,
		JobTimeout: cfg.Cron.JobTimeout,
	})
	if err != nil {
		logg.Error(ctx, "failed to create cron service", err)
		os.Exit(1)
	}

	if *once {
		logg.Info(ctx, "running cron jobs once")
		if err := service.RunOnce(ctx); err != nil {
			logg.Error(ctx, "cron run failed", err)
			os.Exit(1)
		}
		return
	}

	logg.Info(ctx, "starting cron worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "cron worker shutting down gracefully")
}
