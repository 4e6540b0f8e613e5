package app

import (
	"context"
	"fxexchange/internal/adapters"
	"fxexchange/internal/platform/db"
	httpserver "fxexchange/internal/platform/http"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"fxexchange/internal/adapters/cache"
	"fxexchange/internal/adapters/httpclient"
	"fxexchange/internal/adapters/postgres"
	"fxexchange/internal/api"
	"fxexchange/internal/config"
	"fxexchange/internal/rate"
	"fxexchange/internal/rate/handler"

	"github.com/sirupsen/logrus"
)

// Run wires the application components, starts HTTP server and scheduler
func Run() error {
	appCfg, err := config.Init()
	if err != nil {
		return err
	}
	setupLogger(appCfg.Logging)
	logrus.Info("✅ Config initialization successful")

	// Root context bound to OS signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Bounded context for startup operations (migrations, DB connect)
	startupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if appCfg.DbServer.MigrateOnStart {
		if err = db.Migrate(startupCtx, appCfg.DbServer.GetConnectionStr()); err != nil {
			logrus.WithError(err).Error("Error migrating db")
			return err
		}
		logrus.Info("✅ Migrations applied")
	}

	// DB pool
	pool, err := db.CreatePoolAndPing(startupCtx, appCfg.DbServer)
	if err != nil {
		logrus.WithError(err).Error("Error connecting to db")
		return err
	}
	defer pool.Close()
	logrus.Info("✅ Postgres connection successful")

	// Repositories
	rateRepo := postgres.NewRateRepository(pool)
	var spreadRepo adapters.SpreadRepository = postgres.NewSpreadRepository(pool)
	if ttl := time.Duration(appCfg.Cache.SpreadTTLSeconds) * time.Second; ttl > 0 {
		spreadCache, cacheErr := cache.NewSpreadCache(spreadRepo, appCfg.Cache.SpreadMaxItems, ttl)
		if cacheErr != nil {
			logrus.WithError(cacheErr).Error("Failed to create spread cache")
			return cacheErr
		}
		defer spreadCache.Close()
		spreadRepo = spreadCache
	}

	// Base HTTP client (configurable timeout)
	httpTimeout := time.Duration(appCfg.HTTPClient.TimeoutSeconds) * time.Second
	if httpTimeout <= 0 {
		httpTimeout = 10 * time.Second
	}
	baseHTTPClient := &http.Client{Timeout: httpTimeout}

	// Upstream provider
	if appCfg.ExchangeRateAPI.AccessKey == "" {
		logrus.Warn("Exchange rate api access key is empty, provider refreshes will be rejected")
	}
	provider := httpclient.NewRetryingProvider(
		httpclient.NewFixerClient(baseHTTPClient, strings.TrimSuffix(appCfg.ExchangeRateAPI.BaseURL, "/")),
		appCfg.ExchangeRateAPI.MaxRetries,
	)

	// Services
	rateService := rate.NewService(rateRepo, spreadRepo, provider, rate.NewValidator(nil), rate.Settings{
		BaseCurrency:  appCfg.Exchange.BaseCurrency,
		SpreadBase:    appCfg.Exchange.SpreadBase,
		SpreadDefault: appCfg.Exchange.SpreadDefault,
		AccessKey:     appCfg.ExchangeRateAPI.AccessKey,
	})
	scheduler, err := rate.NewScheduler(rateService, appCfg.Scheduler.Cron, appCfg.Scheduler.TimeZone)
	if err != nil {
		logrus.WithError(err).Error("Failed to create scheduler")
		return err
	}
	// Ensure scheduler stops before DB pool closes
	defer func() {
		if shutDownErr := scheduler.Shutdown(); shutDownErr != nil {
			logrus.Errorf("Scheduler shutdown error: %v", shutDownErr)
		}
	}()
	// Start scheduler tied to root context
	if startErr := scheduler.Start(ctx); startErr != nil {
		logrus.WithError(startErr).Error("Failed to start scheduler")
		return startErr
	}
	logrus.Info("✅ Scheduler activation successful")

	// Handlers and router
	router := api.NewRouter(handler.NewExchangeHandler(rateService))

	logrus.Info("Starting http server")
	// Block until context is canceled, then perform graceful shutdown.
	if serverErr := httpserver.Start(ctx, appCfg.HTTPServer, router); serverErr != nil {
		// Cancel the root context to stop scheduler and other in-flight work
		stop()
		logrus.Errorf("HTTP server error: %v", serverErr)
		return serverErr
	}
	return nil
}

func setupLogger(cfg config.Logging) {
	logrus.SetOutput(os.Stdout)
	if parsedLvl, parseErr := logrus.ParseLevel(cfg.Level); parseErr != nil {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(parsedLvl)
	}
	if strings.EqualFold(cfg.Format, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
		return
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}
