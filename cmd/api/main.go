package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/citizen-portal/internal/api/http"
	"github.com/spec-kit/citizen-portal/internal/api/http/handlers"
	"github.com/spec-kit/citizen-portal/internal/auth"
	"github.com/spec-kit/citizen-portal/internal/config"
	"github.com/spec-kit/citizen-portal/internal/events"
	"github.com/spec-kit/citizen-portal/internal/identity"
	"github.com/spec-kit/citizen-portal/internal/observability"
	"github.com/spec-kit/citizen-portal/internal/persistence"
	"github.com/spec-kit/citizen-portal/internal/repository"
	"github.com/spec-kit/citizen-portal/internal/service"
	"github.com/spec-kit/citizen-portal/internal/view"
	"github.com/spec-kit/citizen-portal/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()

	codec := auth.NewTokenCodec(cfg.Identity.TokenVerifyKey)
	if !codec.Verifies() {
		logger.Warn("IDENTITY_TOKEN_VERIFY_KEY not set; access token signatures are not verified")
	}

	sessions, err := auth.NewSessionStore(cfg.Session.Secret, auth.WithCookie(cfg.Session.CookieName, cfg.Session.CookieSecure))
	if err != nil {
		logger.Fatal("failed to init session store", zap.Error(err))
	}
	gate := auth.NewGate(sessions, codec, logger, auth.WithMetrics(metrics))

	identityClient := identity.NewClient(cfg.Identity.BaseURL, nil)
	authService := service.NewAuthService(identityClient, codec)
	registrationService := service.NewRegistrationService(identityClient)

	dispatcher := events.NewInMemoryDispatcher()
	auditService := service.NewAuditService(dispatcher, logger, repository.NewLoginAuditRepository(pg.PoolHandle()))
	worker.StartAuditWorker(auditService)

	views, err := view.NewEngine()
	if err != nil {
		logger.Fatal("failed to parse templates", zap.Error(err))
	}

	var limiterStorage fiber.Storage
	if redis != nil {
		limiterStorage = persistence.NewLimiterStorage(redis.Client)
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.IsProduction(),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth: handlers.NewAuthHandler(handlers.AuthHandlerDeps{
			Auth:         authService,
			Registration: registrationService,
			Sessions:     sessions,
			Views:        views,
			Dispatcher:   dispatcher,
			Metrics:      metrics,
			Logger:       logger,
		}),
		Registration: handlers.NewRegistrationHandler(registrationService, dispatcher, logger),
		Dashboard:    handlers.NewDashboardHandler(views),
		Session:      handlers.NewSessionHandler(),
		Gate:         gate,
		Metrics:      metrics,
		Limiter:      httptransport.NewLimiter(cfg.RateLimit, limiterStorage),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
