package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/helpdesk-br/chamado-service/internal/ai"
	httptransport "github.com/helpdesk-br/chamado-service/internal/api/http"
	"github.com/helpdesk-br/chamado-service/internal/api/http/handlers"
	"github.com/helpdesk-br/chamado-service/internal/auth"
	"github.com/helpdesk-br/chamado-service/internal/config"
	"github.com/helpdesk-br/chamado-service/internal/events"
	"github.com/helpdesk-br/chamado-service/internal/observability"
	"github.com/helpdesk-br/chamado-service/internal/persistence"
	"github.com/helpdesk-br/chamado-service/internal/repository"
	"github.com/helpdesk-br/chamado-service/internal/service"
	"github.com/helpdesk-br/chamado-service/internal/worker"
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

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	assistant := ai.NewClient(cfg.AI, logger)

	activityService := service.NewActivityService(redis, userRepo, cfg.Assignment.OnlineWindow(), logger)
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		UserRepo: userRepo,
		Activity: activityService,
		Window:   cfg.Assignment.OnlineWindow(),
	})
	typingService := service.NewTypingService(cfg.Typing.Timeout())

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:   userRepo,
		Tokens:     tokenManager,
		Activity:   activityService,
		BcryptCost: cfg.Auth.BcryptCost,
		Logger:     logger,
	})
	userService := service.NewUserService(userRepo, cfg.Auth.BcryptCost)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		MessageRepo: messageRepo,
		Assistant:   assistant,
		Selector:    assignmentService,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	chatService := service.NewChatService(messageRepo, assistant, logger)

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(tokenManager, userRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService, activityService),
		Tickets:        handlers.NewTicketsHandler(ticketService, typingService),
		Chat:           handlers.NewChatHandler(chatService, assistant),
		Users:          handlers.NewUsersHandler(userService),
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
