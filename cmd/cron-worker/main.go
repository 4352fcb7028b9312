package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-backend/internal/cron"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/docstore"
	"github.com/angelmondragon/storefront-backend/pkg/docstore/firestore"
	"github.com/angelmondragon/storefront-backend/pkg/docstore/memory"
	"github.com/angelmondragon/storefront-backend/pkg/instance"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

type runMode struct {
	once bool
	job  string
}

func main() {
	var mode runMode
	flag.BoolVar(&mode.once, "once", false, "run every job a single time and exit")
	flag.StringVar(&mode.job, "job", "", "run only the named job once and exit")
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
		Fields:      map[string]any{"env": cfg.App.Env, "instance": instance.GetID()},
	})

	if err := run(cfg, logg, mode); err != nil {
		logg.Error(context.Background(), "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger, mode runMode) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store docstore.Store
	if cfg.DocStore.UseMemory() {
		store = memory.New()
	} else {
		fs, err := firestore.New(ctx, cfg.GCP, logg)
		if err != nil {
			return err
		}
		store = fs
	}
	defer func() { err = multierr.Append(err, store.Close()) }()

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	orderRepo := orders.NewRepository(orders.RepositoryParams{
		Store:            store,
		Products:         product.NewRepository(store),
		ExpiryWindow:     cfg.Orders.ExpiryWindow,
		RestoreBatchSize: cfg.Orders.RestoreBatchSize,
	})

	restoreJob, err := cron.NewRestoreUnpaidOrdersJob(cron.RestoreUnpaidOrdersJobParams{
		Logger:  logg,
		Orders:  orderRepo,
		Metrics: metrics.NewCheckoutMetrics(reg),
	})
	if err != nil {
		return err
	}
	registry, err := cron.NewRegistry(restoreJob)
	if err != nil {
		return err
	}

	locker, err := cron.NewRedisLocker(redisClient, cfg.Cron.LockTTL)
	if err != nil {
		return err
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:     logg,
		Registry:   registry,
		Locker:     locker,
		Metrics:    metrics.NewJobMetrics(reg),
		Interval:   cfg.Cron.Interval,
		JobTimeout: cfg.Cron.JobTimeout,
	})
	if err != nil {
		return err
	}

	ctx = logg.WithField(ctx, "serviceKind", cfg.Service.Kind)

	switch {
	case mode.job != "":
		logg.Info(logg.WithField(ctx, "job", mode.job), "running single job")
		return service.RunJob(ctx, mode.job)
	case mode.once:
		logg.Info(ctx, "running all jobs once")
		return service.RunOnce(ctx)
	}

	if cfg.Cron.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.Cron.MetricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logg.Error(ctx, "cron metrics listener stopped", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			err = multierr.Append(err, srv.Shutdown(shutdownCtx))
		}()
	}

	logg.Info(ctx, "starting cron worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
	return nil
}
