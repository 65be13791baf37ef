package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/hinagata/saas-admin/internal/config"
	"github.com/hinagata/saas-admin/internal/infra/database"
	"github.com/hinagata/saas-admin/internal/infra/repository"
	"github.com/hinagata/saas-admin/internal/infra/tracing"
	"github.com/hinagata/saas-admin/internal/present/rest"
	"github.com/hinagata/saas-admin/internal/present/rest/middleware"
	"github.com/hinagata/saas-admin/internal/service"
	"github.com/hinagata/saas-admin/internal/token"
	"github.com/hinagata/saas-admin/internal/usecase"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "path to config file")
	flag.Parse()

	conf, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		slog.Error("failed to connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := database.MigratePostgres(db); err != nil {
		slog.Error("failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if flag.Arg(0) == "seed" {
		if err := runSeed(db); err != nil {
			slog.Error("seed failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		slog.Info("seed data created")
		return
	}

	if conf.Server.EnableTrace {
		shutdown, err := tracing.Setup(context.Background(), "saas-admin", conf.Server.TraceEndpoint)
		if err != nil {
			slog.Error("failed to set up tracing", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				slog.Warn("tracing shutdown failed", slog.String("error", err.Error()))
			}
		}()
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, conf.Server.RedisPassword, conf.Server.RedisDB)

	var lookupCache database.LookupCache
	if conf.Server.MemcachedAddr != "" {
		lookupCache = database.NewMemcachedCache(database.NewMemcached(conf.Server.MemcachedAddr))
	} else {
		lookupCache = database.NewLocalCache()
	}

	userRepo := repository.NewUserRepository(db)
	tenantRepo := repository.NewTenantRepository(db, lookupCache)

	tokens := token.NewService(token.Config{
		Secret: conf.Auth.JWTSecret,
		TTL:    conf.Auth.TTL(),
	})
	authService := service.NewAuthService(userRepo, tokens)
	eventService := service.NewEventService(rdb)

	userUC := usecase.NewUserUsecase(userRepo, tenantRepo, eventService, conf.Auth.DefaultUserPassword)
	tenantUC := usecase.NewTenantUsecase(tenantRepo, eventService)

	handler := rest.NewHandler(authService, userUC, tenantUC, eventService)
	authMw := middleware.NewAuthMiddleware(authService)
	loginLimiter := middleware.NewLoginRateLimiter(rdb, conf.Auth.LoginRateLimit, conf.Auth.RateWindow())

	e := echo.New()
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware("saas-admin"))
	}

	handler.RegisterRoutes(e, authMw, loginLimiter.Middleware)

	e.Logger.Fatal(e.Start(conf.Server.ListenAddr))
}
