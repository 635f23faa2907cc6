package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"woosync/internal/config"
	"woosync/internal/handlers"
	"woosync/internal/jobs"
	"woosync/internal/locking"
	"woosync/internal/logger"
	"woosync/internal/repositories"
	"woosync/internal/services"
	"woosync/internal/woocommerce"
	"woosync/pkg/database"
)

const version = "1.0.0"

// @title woosync API
// @version 1.0.0
// @description Mirrors WooCommerce store catalogs into PostgreSQL.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	appLog := logger.New(cfg.Server.LogLevel, cfg.Server.LogFormat, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.Database.URL, appLog)
	if err != nil {
		appLog.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	if err := database.Migrate(cfg.Database.URL, appLog); err != nil {
		appLog.Fatal().Err(err).Msg("failed to apply migrations")
	}

	storeRepo := repositories.NewStoreRepo(pool)
	productRepo := repositories.NewProductRepo(pool)
	imageRepo := repositories.NewProductImageRepo(pool)

	// rdb stays a nil interface when redis is not configured
	var rdb redis.UniversalClient
	var locker locking.Locker
	if cfg.Redis.Addr != "" {
		client, err := locking.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, appLog)
		if err != nil {
			appLog.Fatal().Err(err).Msg("failed to configure redis")
		}
		defer client.Close()
		rdb = client
		locker = locking.NewRedisLocker(client)
		appLog.Info().Msg("using redis sync locks")
	} else {
		locker = locking.NewLeaseLocker(repositories.NewSyncLeaseRepo(pool))
		appLog.Info().Msg("using postgres sync leases")
	}

	catalogs := services.WooCatalogFactory(woocommerce.Options{
		PerPage:    cfg.Woo.PerPage,
		Timeout:    cfg.WooTimeout(),
		MaxRetries: cfg.Woo.MaxRetries,
		RetryDelay: cfg.WooRetryDelay(),
		AuthMode:   cfg.Woo.AuthMode,
	}, appLog)

	syncSvc := services.NewSyncService(storeRepo, productRepo, imageRepo, locker, catalogs, services.SyncOptions{
		ProductMode: cfg.Sync.ProductMode,
		LockTTL:     cfg.LockTTL(),
		RunTimeout:  cfg.RunTimeout(),
		Concurrency: cfg.Sync.Concurrency,
	}, appLog)
	productSvc := services.NewProductService(storeRepo, productRepo, imageRepo)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Pre(echoMiddleware.RemoveTrailingSlash())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())
	e.Use(logger.RequestLogger(appLog))

	handlers.RegisterRoutes(e,
		handlers.NewSyncHandlers(syncSvc, appLog),
		handlers.NewProductHandlers(productSvc),
		handlers.NewHealthHandlers(pool, rdb))

	if interval := cfg.SyncInterval(); interval > 0 {
		scheduler, err := jobs.NewSyncScheduler(syncSvc, interval, appLog)
		if err != nil {
			appLog.Fatal().Err(err).Msg("failed to create sync scheduler")
		}
		scheduler.Start()
		defer func() {
			if err := scheduler.Stop(); err != nil {
				appLog.Error().Err(err).Msg("failed to stop sync scheduler")
			}
		}()
	}

	go func() {
		appLog.Info().Str("version", version).Str("port", cfg.Server.Port).Msg("woosync server starting")
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	appLog.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLog.Error().Err(err).Msg("graceful shutdown failed")
	}
}
