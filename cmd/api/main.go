package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/RorolRoro/tkg-site/internal/api/http"
	"github.com/RorolRoro/tkg-site/internal/api/http/handlers"
	"github.com/RorolRoro/tkg-site/internal/auth"
	"github.com/RorolRoro/tkg-site/internal/config"
	"github.com/RorolRoro/tkg-site/internal/content"
	"github.com/RorolRoro/tkg-site/internal/discord"
	"github.com/RorolRoro/tkg-site/internal/events"
	"github.com/RorolRoro/tkg-site/internal/observability"
	"github.com/RorolRoro/tkg-site/internal/persistence"
	"github.com/RorolRoro/tkg-site/internal/policy"
	"github.com/RorolRoro/tkg-site/internal/repository"
	"github.com/RorolRoro/tkg-site/internal/service"
	"github.com/RorolRoro/tkg-site/internal/worker"
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

	pol, err := policy.Load(cfg.Policy.Path)
	if err != nil {
		logger.Fatal("failed to load policy", zap.Error(err))
	}
	registry := policy.NewRegistry(pol)
	resolver := policy.NewResolver(registry, pol)

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations && pg.PoolHandle() != nil {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var ticketRepo repository.TicketRepository
	if pool := pg.PoolHandle(); pool != nil {
		ticketRepo = repository.NewPostgresTicketRepository(pool)
	} else {
		ticketRepo = repository.NewFileTicketRepository(cfg.Store.TicketFilePath, logger)
	}

	var guild *discord.Client
	if cfg.Discord.BotToken != "" && cfg.Discord.GuildID != "" {
		guild, err = discord.NewClient(cfg.Discord.BotToken, cfg.Discord.GuildID)
		if err != nil {
			logger.Fatal("failed to create discord client", zap.Error(err))
		}
	} else {
		logger.Warn("discord bot token or guild id missing; role resolution and org chart disabled")
	}

	pages, err := content.Load(cfg.Content.Dir, logger)
	if err != nil {
		logger.Fatal("failed to load content pages", zap.Error(err))
	}

	metrics := observability.NewMetrics("tkg_site")
	dispatcher := events.NewInMemoryDispatcher()

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		Registry:   registry,
		Resolver:   resolver,
		Dispatcher: dispatcher,
	})
	authService := service.NewAuthService(*cfg, guild, redis, pol, logger)
	orgChartService := service.NewOrgChartService(guild, redis, pol, cfg.OrgChart.CacheTTL(), logger)
	notificationService := service.NewNotificationService(dispatcher, logger, metrics, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), authService)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService, cfg.App.Env != "development"),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		StaffTickets:   handlers.NewStaffTicketsHandler(ticketService),
		OrgChart:       handlers.NewOrgChartHandler(orgChartService),
		Content:        handlers.NewContentHandler(pages),
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
