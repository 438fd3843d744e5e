package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	gonanoid "github.com/matoous/go-nanoid/v2"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/whenfree-api/api/swagger"
	"github.com/noah-isme/whenfree-api/internal/handler"
	internalmiddleware "github.com/noah-isme/whenfree-api/internal/middleware"
	"github.com/noah-isme/whenfree-api/internal/repository"
	"github.com/noah-isme/whenfree-api/internal/service"
	"github.com/noah-isme/whenfree-api/pkg/cache"
	"github.com/noah-isme/whenfree-api/pkg/config"
	"github.com/noah-isme/whenfree-api/pkg/database"
	"github.com/noah-isme/whenfree-api/pkg/download"
	"github.com/noah-isme/whenfree-api/pkg/jobs"
	"github.com/noah-isme/whenfree-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/whenfree-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/whenfree-api/pkg/middleware/requestid"
	"github.com/noah-isme/whenfree-api/pkg/ratelimit"
)

// @title WhenFree API
// @version 1.0.0
// @description Collects availability for a gathering and picks the best date.
// @BasePath /api/v1
// @schemes http https

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	readiness := map[string]handler.ReadinessCheck{"postgres": db.PingContext}

	var store ratelimit.Store
	switch cfg.RateLimit.Store {
	case config.RateLimitStoreRedis:
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer client.Close()
		store = ratelimit.NewRedisStore(client, "")
		readiness["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	default:
		store = ratelimit.NewMemoryStore()
	}

	limiter := ratelimit.NewLimiter(store)
	policies := ratelimit.PoliciesFromConfig(cfg.RateLimit)

	sweeper := jobs.NewPeriodic("ratelimit-sweep", func(ctx context.Context) error {
		removed, err := limiter.Sweep(ctx)
		if removed > 0 {
			logr.Debug("expired rate limit windows removed", zap.Int("count", removed))
		}
		return err
	}, jobs.PeriodicConfig{Interval: cfg.RateLimit.SweepInterval, Logger: logr})
	sweeper.Start(ctx)
	defer sweeper.Stop()

	metrics := service.NewMetricsService()
	validate := validator.New()

	eventRepo := repository.NewEventRepository(db)
	responseRepo := repository.NewResponseRepository(db)

	guard := service.NewAccessGuard(eventRepo, limiter, policies.VerifyCode, metrics, logr)
	eventSvc := service.NewEventService(eventRepo, responseRepo, guard, limiter, metrics, validate, logr, service.EventServiceConfig{
		PublicBaseURL:  cfg.PublicBaseURL,
		HashAdminCodes: cfg.Security.HashAdminCodes,
		Policy:         policies.CreateEvent,
	})
	responseSvc := service.NewResponseService(eventRepo, responseRepo, guard, limiter, policies.SubmitResponse, metrics, validate, logr)
	secret := cfg.Security.DownloadSecret
	if secret == "" {
		// Links stop working across restarts and replicas until a secret is configured.
		secret, err = gonanoid.New(48)
		if err != nil {
			logr.Fatal("failed to generate download signing secret", zap.Error(err))
		}
		logr.Warn("DOWNLOAD_SIGNING_SECRET not set; using an ephemeral secret")
	}
	signer, err := download.NewSigner(secret, cfg.Security.DownloadTTL)
	if err != nil {
		logr.Fatal("failed to init download signer", zap.Error(err))
	}
	resultsSvc := service.NewResultsService(eventSvc, guard, service.NewExportService(nil, nil, logr), signer, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logr.Fatal("invalid trusted proxies", zap.Error(err))
	}
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	handler.RegisterOps(r, handler.NewMetricsHandler(metrics, readiness))
	handler.RegisterRoutes(r.Group(cfg.APIPrefix), handler.Handlers{
		Events:    handler.NewEventHandler(eventSvc, guard),
		Responses: handler.NewResponseHandler(responseSvc),
		Results:   handler.NewResultsHandler(resultsSvc),
		Audit:     logr,
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "rate_limit_store", cfg.RateLimit.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
