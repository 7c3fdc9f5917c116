package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/dopaj/field-service/internal/api/http"
	"github.com/dopaj/field-service/internal/api/http/handlers"
	"github.com/dopaj/field-service/internal/assist"
	"github.com/dopaj/field-service/internal/auth"
	"github.com/dopaj/field-service/internal/config"
	"github.com/dopaj/field-service/internal/events"
	"github.com/dopaj/field-service/internal/geo"
	"github.com/dopaj/field-service/internal/observability"
	"github.com/dopaj/field-service/internal/persistence"
	"github.com/dopaj/field-service/internal/repository"
	"github.com/dopaj/field-service/internal/service"
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

	var (
		ticketRepo repository.TicketRepository
		userRepo   repository.UserRepository
	)
	if pool := pg.PoolHandle(); pool != nil {
		ticketRepo = repository.NewTicketRepository(pool)
		userRepo = repository.NewUserRepository(pool)
	} else {
		ticketRepo = repository.NewMemoryTicketRepository()
		userRepo = repository.NewMemoryUserRepository()
	}

	var revocationList auth.RevocationList
	if redis.Client != nil {
		revocationList = auth.NewRedisRevocationList(redis.Client)
	} else {
		revocationList = auth.NewMemoryRevocationList()
	}

	seeder := service.NewSeeder(userRepo, ticketRepo, cfg.Auth, logger)
	if err := seeder.Seed(ctx); err != nil {
		logger.Fatal("failed to seed directory", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	notifications.RegisterHandlers()

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:       userRepo,
		RevocationList: revocationList,
		Logger:         logger,
	})
	directoryService := service.NewDirectoryService(userRepo, cfg.Auth.BcryptCost, dispatcher)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		UserRepo:   userRepo,
		Locator:    geo.NewHTTPLocator(cfg.Geo),
		GeoTimeout: cfg.Geo.Timeout(),
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	statsService := service.NewStatsService(ticketRepo)
	assistClient := assist.NewClient(cfg.Assist, logger)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo, revocationList)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{BodyLimit: 32 * 1024 * 1024})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(directoryService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Dashboard:      handlers.NewDashboardHandler(statsService),
		Assist:         handlers.NewAssistHandler(assistClient, logger),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
