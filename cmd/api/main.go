package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"agristock/internal/app"
	"agristock/internal/config"
	"agristock/internal/handler"
	"agristock/internal/logger"
)

func main() {
	// 1. Load Env
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		log.Fatal().Err(err).Msg("failed to set up logger")
	}
	if envErr != nil {
		log.Warn().Msg(".env file not found, relying on system env")
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Database and wiring
	a, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start")
	}

	// 3. Seed the owner account
	created, err := a.Services.Auth.EnsureOwner(cfg.OwnerEmail, cfg.OwnerPassword, cfg.OwnerName)
	if err != nil {
		log.Warn().Err(err).Msg("failed to seed owner account")
	} else if created {
		log.Info().Str("email", cfg.OwnerEmail).Msg("owner account created")
	}

	// 4. Live views, stopped only after the server has drained
	hubCtx, stopHub := context.WithCancel(context.Background())
	go a.Hub.Run(hubCtx)

	// 5. Scheduled full backup
	if a.Syncer != nil && cfg.BackupSyncSchedule != "" {
		c, err := a.Syncer.Schedule(cfg.BackupSyncSchedule)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid BACKUP_SYNC_SCHEDULE")
		}
		c.Start()
		defer c.Stop()
	}

	// 6. Setup Fiber
	server := fiber.New(fiber.Config{
		AppName: "AgriStock Ledger v1.0",
	})
	server.Use(fiberlogger.New())
	server.Use(recover.New())
	server.Use(cors.New())

	handler.Routes(server, handler.Handlers{
		Auth:      handler.NewAuthHandler(a.Services.Auth),
		Products:  handler.NewProductHandler(a.Services.Products),
		Invoices:  handler.NewInvoiceHandler(a.Services.Invoices, a.Renderer),
		Purchases: handler.NewPurchaseHandler(a.Services.Purchases, a.Renderer),
		Directory: handler.NewDirectoryHandler(a.Services.Directory),
		Dashboard: handler.NewDashboardHandler(a.Services.Reports),
		WS:        handler.NewWSHandler(a.Hub, a.Services.Auth.Authenticate),
	}, a.Services.Auth.Authenticate)

	// 7. Graceful Shutdown
	go func() {
		if err := server.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")
	if err := server.Shutdown(); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	stopHub()
	a.Dispatcher.Wait()

	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}
	log.Info().Msg("server exited")
}
