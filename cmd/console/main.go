package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/claims-console/internal/api/http"
	"github.com/spec-kit/claims-console/internal/api/http/handlers"
	"github.com/spec-kit/claims-console/internal/auth"
	"github.com/spec-kit/claims-console/internal/backend"
	"github.com/spec-kit/claims-console/internal/config"
	"github.com/spec-kit/claims-console/internal/domain"
	"github.com/spec-kit/claims-console/internal/events"
	"github.com/spec-kit/claims-console/internal/menu"
	"github.com/spec-kit/claims-console/internal/observability"
	"github.com/spec-kit/claims-console/internal/persistence"
	"github.com/spec-kit/claims-console/internal/repository"
	"github.com/spec-kit/claims-console/internal/service"
	"github.com/spec-kit/claims-console/internal/worker"
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

	tree := menu.DefaultTree()
	if err := menu.Validate(tree); err != nil {
		logger.Fatal("invalid navigation tree", zap.Error(err))
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var auditRepo repository.AuditRepository
	if pg.Enabled() {
		auditRepo = repository.NewAuditRepository(pg.PoolHandle())
	}

	dispatcher := events.NewInMemoryDispatcher(logger)
	auditService := service.NewAuditService(dispatcher, auditRepo, logger)
	worker.StartAuditWorker(auditService)

	backendClient := backend.NewClient(cfg.Backend)
	sessions := service.NewSessionService(service.SessionDependencies{
		Repo:       repository.NewSessionRepository(redis),
		Sealer:     persistence.NewSealer(cfg.Auth.SealKey),
		Backend:    backendClient,
		Dispatcher: dispatcher,
		Menu:       tree,
		Logger:     logger,
		TTL:        cfg.Auth.SessionTTL(),
	})
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL())
	authService := service.NewAuthService(backendClient, sessions, tokens, logger)

	metrics := observability.NewMetrics()
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), sessions, cfg.Auth.CookieName, logger)
	authMiddleware.OnDeny(func(c *fiber.Ctx, subject string, roles domain.RoleSet) {
		metrics.RecordDecision(subject, false)
		var sessionID, userID string
		if principal, ok := auth.PrincipalFromContext(c); ok {
			sessionID = principal.SessionID
			if identity, ok := principal.Store.Identity(); ok {
				userID = identity.UserID
			}
		}
		auditService.RecordDenied(c.UserContext(), sessionID, userID, subject, roles)
	})

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.IsProduction(),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:    handlers.NewAuthHandler(authService, handlers.CookieSettings{Name: cfg.Auth.CookieName, Secure: cfg.Auth.CookieSecure}),
		Console: handlers.NewConsoleHandler(sessions, auditService, tree, metrics),

		AuthMiddleware:     authMiddleware,
		Metrics:            metrics,
		LoginRatePerMinute: cfg.Auth.LoginRatePerMinute,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("fiber shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
