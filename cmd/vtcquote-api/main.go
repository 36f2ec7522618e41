// README: Entry point; loads config, wires stores and services, serves HTTP until signalled.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vtcquote/internal/config"
	httptransport "vtcquote/internal/http"
	"vtcquote/internal/infra"
	"vtcquote/internal/maps"
	"vtcquote/internal/metrics"
	"vtcquote/internal/modules/pricing"
	"vtcquote/internal/modules/quote"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := infra.NewLogger(cfg.Env)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defaults, err := config.LoadPricingDefaults(cfg.Pricing.DefaultSettingsPath)
	if err != nil {
		logger.Fatal("load pricing defaults", zap.Error(err))
	}

	var verifier infra.TokenVerifier
	switch {
	case cfg.Firebase.ProjectID != "":
		verifier, err = infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
		if err != nil {
			logger.Fatal("firebase init", zap.Error(err))
		}
	case cfg.Env == "development":
		logger.Warn("VTC_FIREBASE_PROJECT_ID not set; trusting the X-Org-ID header")
	default:
		logger.Fatal("VTC_FIREBASE_PROJECT_ID is required outside development")
	}

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN, cfg.DB.MaxConns, cfg.DB.MinConns)
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer dbPool.Close()

	// Redis is optional: without it every quote reads its snapshot from Postgres.
	var cache pricing.SnapshotCache
	redisClient, err := infra.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Warn("redis unavailable, snapshot cache disabled", zap.Error(err))
	} else {
		defer func() { _ = redisClient.Close() }()
		cache = pricing.NewCache(redisClient, cfg.Cache.SnapshotTTL)
	}

	var router pricing.Router
	if cfg.Maps.APIKey != "" {
		routes, err := maps.NewRouteService(cfg.Maps.APIKey, cfg.Maps.RPS, cfg.Maps.Burst)
		if err != nil {
			logger.Fatal("routing provider init", zap.Error(err))
		}
		router = routes
	} else {
		logger.Info("no maps API key; legs are haversine estimates")
	}

	metrics.RegisterDefault()

	pricingSvc := pricing.NewService(pricing.NewStore(dbPool), cache, router, defaults, logger)
	quoteSvc := quote.NewService(quote.NewStore(dbPool), pricingSvc, logger)

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := httptransport.NewRouter(httptransport.RouterDeps{
		Pricing:  pricingSvc,
		Quotes:   quoteSvc,
		Verifier: verifier,
		Logger:   logger,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		logger.Info("starting server", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
}
