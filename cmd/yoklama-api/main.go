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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/yoklama-api/api/swagger"
	"github.com/noah-isme/yoklama-api/internal/handler"
	internalmiddleware "github.com/noah-isme/yoklama-api/internal/middleware"
	"github.com/noah-isme/yoklama-api/internal/repository"
	"github.com/noah-isme/yoklama-api/internal/service"
	"github.com/noah-isme/yoklama-api/pkg/cache"
	"github.com/noah-isme/yoklama-api/pkg/config"
	"github.com/noah-isme/yoklama-api/pkg/firebase"
	"github.com/noah-isme/yoklama-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/yoklama-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/yoklama-api/pkg/middleware/requestid"
)

// @title Yoklama API
// @version 1.0.0
// @description Weekly schedule resolution for students and academics
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	handle, err := repository.OpenDocumentStore(ctx, cfg)
	if err != nil {
		logr.Fatal("failed to open document store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer handle.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	store := service.NewInstrumentedStore(handle.Store, metricsSvc)
	validate := validator.New()

	verifier, err := newVerifier(ctx, cfg)
	if err != nil {
		logr.Fatal("failed to init token verifier", zap.String("provider", cfg.Auth.Provider), zap.Error(err))
	}

	checks := map[string]handler.ReadinessCheck{"store": handle.Ping}
	var cacheRepo *repository.CacheRepository
	if cfg.Schedule.CacheEnabled {
		redisClient, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, schedule cache disabled", zap.Error(err))
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient)
			defer cacheRepo.Close() //nolint:errcheck
			checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		}
	}
	var cacheStore service.CacheRepository
	if cacheRepo != nil {
		cacheStore = cacheRepo
	}
	cacheSvc := service.NewCacheService(cacheStore, metricsSvc, cfg.Schedule.CacheTTL, logr, cfg.Schedule.CacheEnabled)

	terms := service.NewTermSettingsService(store, service.TermSettingsConfig{
		Paths:       cfg.Schedule.SettingsPaths,
		DefaultTerm: cfg.Schedule.DefaultTerm,
		DefaultYear: cfg.Schedule.DefaultYear,
	}, logr)
	resolver := service.NewScheduleResolver(store, terms, metricsSvc, logr, service.ScheduleResolverConfig{ParentFanOut: cfg.Schedule.ParentFanOut})
	profileSvc := service.NewProfileService(store, validate, logr)
	scheduleSvc := service.NewScheduleService(resolver, profileSvc, cacheSvc, logr)

	scheduleHandler := handler.NewScheduleHandler(scheduleSvc, nil)
	if cfg.Exports.Enabled {
		scheduleHandler = handler.NewScheduleHandler(scheduleSvc, service.NewExportService(nil, nil, validate, logr))
	}
	profileHandler := handler.NewProfileHandler(profileSvc, scheduleSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.WithResponseMeta(), internalmiddleware.JWT(verifier))
	{
		api.GET("/schedule/me", scheduleHandler.Me)
		api.GET("/schedule/me/export", scheduleHandler.Export)
		api.GET("/students/:id/schedule", internalmiddleware.AdminOrSelf(), scheduleHandler.Student)
		api.GET("/academics/:id/schedule", internalmiddleware.AdminOrSelf(), scheduleHandler.Academic)
		api.GET("/me/role", profileHandler.Role)
		api.PUT("/profiles/students/:id", internalmiddleware.AdminOrSelf(), profileHandler.SaveStudent)
		api.PUT("/profiles/academics/:id", internalmiddleware.AdminOrSelf(), profileHandler.SaveAcademic)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logr.Warn("server shutdown failed", zap.Error(err))
		}
	}()

	logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "store", handle.Driver, "auth", cfg.Auth.Provider)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func newVerifier(ctx context.Context, cfg *config.Config) (service.TokenVerifier, error) {
	switch cfg.Auth.Provider {
	case config.AuthProviderFirebase:
		app, err := firebase.NewApp(ctx, cfg.Firebase)
		if err != nil {
			return nil, err
		}
		client, err := firebase.NewAuth(ctx, app)
		if err != nil {
			return nil, err
		}
		return service.NewFirebaseVerifier(client), nil
	case config.AuthProviderJWT:
		if cfg.Auth.JWTSecret == "" {
			return nil, errors.New("JWT_SECRET is required for the jwt auth provider")
		}
		return service.NewJWTVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer), nil
	default:
		return nil, fmt.Errorf("unsupported auth provider %q", cfg.Auth.Provider)
	}
}
