package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/angelmondragon/secureguard-backend/api/controllers"
	"github.com/angelmondragon/secureguard-backend/api/routes"
	"github.com/angelmondragon/secureguard-backend/internal/admins"
	"github.com/angelmondragon/secureguard-backend/internal/auth"
	"github.com/angelmondragon/secureguard-backend/internal/dashboard"
	"github.com/angelmondragon/secureguard-backend/internal/guards"
	"github.com/angelmondragon/secureguard-backend/internal/identity"
	"github.com/angelmondragon/secureguard-backend/internal/lifecycle"
	"github.com/angelmondragon/secureguard-backend/internal/supervisors"
	pkgauth "github.com/angelmondragon/secureguard-backend/pkg/auth"
	"github.com/angelmondragon/secureguard-backend/pkg/auth/session"
	"github.com/angelmondragon/secureguard-backend/pkg/config"
	"github.com/angelmondragon/secureguard-backend/pkg/db"
	"github.com/angelmondragon/secureguard-backend/pkg/env"
	"github.com/angelmondragon/secureguard-backend/pkg/logger"
	"github.com/angelmondragon/secureguard-backend/pkg/metrics"
	"github.com/angelmondragon/secureguard-backend/pkg/migrate"
	"github.com/angelmondragon/secureguard-backend/pkg/redis"
	"github.com/angelmondragon/secureguard-backend/pkg/security"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRun(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	authMetrics := metrics.NewAuthMetrics(registry)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	readiness := []controllers.ReadinessCheck{{Name: "postgres", Pinger: dbClient}}

	var revocations *session.Manager
	if cfg.Redis.Enabled() {
		var redisClient *redis.Client
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
		if revocations, err = session.NewManager(redisClient); err != nil {
			return err
		}
		readiness = append(readiness, controllers.ReadinessCheck{Name: "redis", Pinger: redisClient})
	} else {
		logg.Warn(ctx, "redis not configured, logout will not revoke tokens")
	}

	hasher := security.NewHasher(cfg.Password)
	tokens, err := pkgauth.NewTokenService(cfg.JWT, nil)
	if err != nil {
		return err
	}
	resolver, err := identity.NewResolver(identity.StoreStrategies(dbClient.DB())...)
	if err != nil {
		return err
	}

	gateParams := identity.GateParams{Tokens: tokens, Resolver: resolver, Logger: logg, Metrics: authMetrics}
	authParams := auth.ServiceParams{DB: dbClient, Accounts: resolver, Hasher: hasher, Tokens: tokens, Metrics: authMetrics, Logger: logg}
	if revocations != nil {
		gateParams.Revocations = revocations
		authParams.Revoker = revocations
	}
	gate, err := identity.NewGate(gateParams)
	if err != nil {
		return err
	}
	authService, err := auth.NewService(authParams)
	if err != nil {
		return err
	}

	manager, err := lifecycle.NewManager(dbClient.DB(), logg, authMetrics)
	if err != nil {
		return err
	}
	adminService, err := admins.NewService(admins.ServiceParams{DB: dbClient, Hasher: hasher, Logger: logg})
	if err != nil {
		return err
	}
	supervisorService, err := supervisors.NewService(supervisors.ServiceParams{DB: dbClient, Hasher: hasher, Lifecycle: manager, Logger: logg})
	if err != nil {
		return err
	}
	guardService, err := guards.NewService(guards.ServiceParams{DB: dbClient, Hasher: hasher, Lifecycle: manager, Logger: logg})
	if err != nil {
		return err
	}
	dashboardService, err := dashboard.NewService(dbClient.DB())
	if err != nil {
		return err
	}

	if cfg.Bootstrap.SeedOnStart {
		seed := admins.SeedRequest{
			Email:    cfg.Bootstrap.AdminEmail,
			Password: cfg.Bootstrap.AdminPassword,
			Name:     cfg.Bootstrap.AdminName,
		}
		if _, err := adminService.Seed(ctx, seed, false); err != nil {
			return err
		}
	}

	handler := routes.NewRouter(cfg, logg, routes.Dependencies{
		Gate:           gate,
		Auth:           authService,
		Admins:         adminService,
		Supervisors:    supervisorService,
		Guards:         guardService,
		Dashboard:      dashboardService,
		HTTPMetrics:    httpMetrics,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Readiness:      readiness,
		ResetSchema: func(ctx context.Context) error {
			sqlDB, err := dbClient.SQL()
			if err != nil {
				return err
			}
			return migrate.Reset(ctx, sqlDB, migrate.DefaultDir)
		},
	})

	addr := ":" + env.First(cfg.App.Port, "PORT")
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.App.ReadTimeout,
		WriteTimeout: cfg.App.WriteTimeout,
	}

	logCtx := logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "addr": addr})
	logg.Info(logCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
