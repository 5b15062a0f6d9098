package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/Ananth-NQI/recovery-bot/database"
	"github.com/Ananth-NQI/recovery-bot/internal/config"
	"github.com/Ananth-NQI/recovery-bot/internal/handlers"
	"github.com/Ananth-NQI/recovery-bot/internal/jobs"
	"github.com/Ananth-NQI/recovery-bot/internal/routes"
	"github.com/Ananth-NQI/recovery-bot/internal/services"
	"github.com/Ananth-NQI/recovery-bot/internal/storage"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	store, err := newStore(cfg, log)
	if err != nil {
		log.Error("failed to initialize storage", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}

	sender, err := newSender(cfg, log)
	if err != nil {
		log.Error("failed to initialize message gateway", "gateway", cfg.Gateway, "error", err)
		os.Exit(1)
	}

	// Initialize all services
	consent := services.NewConsentLedger(store, log)
	sessions := services.NewSessionManager(store, log)
	printer := services.NewReceiptPrinter(services.ReceiptOptions{
		Simulation: cfg.Printer.Simulation,
		OutputDir:  cfg.Printer.OutputDir,
		Width:      cfg.Printer.Width,
		ShopName:   cfg.ShopName,
	}, log)
	orders := services.NewOrderLogger(store, printer, log)

	var flow services.OrderFlow
	switch cfg.OrderMode {
	case config.ModeSingleMessage:
		flow = services.NewSingleMessageFlow(orders, sender, log)
	default:
		flow = services.NewConversationFlow(sessions, orders, sender, log)
	}

	batch := services.NewBatchSender(sender, services.BatchOptions{
		Size:  cfg.Broadcast.BatchSize,
		Delay: cfg.Broadcast.BatchDelay,
	}, log)

	app := fiber.New(fiber.Config{
		AppName: "Recovery Bot v" + version,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	shutdown := jobs.NewShutdownJob(func() {
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("server shutdown", "error", err)
		}
		os.Exit(0)
	}, log)

	dispatcher := services.NewBroadcastDispatcher(store, consent, batch, flow, shutdown, services.EstimateConfig{
		PerContact:   cfg.Broadcast.PerContact,
		SafetyBuffer: cfg.Broadcast.SafetyBuffer,
		MaxWait:      cfg.Broadcast.MaxWait,
	}, log)

	rules := services.NewRulesEngine(consent, dispatcher, flow, sender, log)

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, X-Admin-Token",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	routes.SetupRoutes(app, cfg, routes.Handlers{
		Health:  handlers.NewHealthHandler(version, cfg.Gateway, flow.Name(), store, sessions),
		Webhook: handlers.NewWebhookHandler(rules, log),
		Admin:   handlers.NewAdminHandler(orders, sessions, consent),
	}, log)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Info("gracefully shutting down")
		shutdown.Stop()
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	log.Info("recovery bot starting",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"gateway", cfg.Gateway,
		"store", cfg.Storage.Backend,
		"order_mode", flow.Name(),
		"printer_simulation", cfg.Printer.Simulation,
	)

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newStore(cfg *config.Config, log *slog.Logger) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case config.StoreMemory:
		log.Warn("using in-memory storage, records are lost on restart")
		return storage.NewMemoryStore(), nil
	case config.StorePostgres:
		db, err := database.Connect(cfg.Storage.DatabaseURL, log)
		if err != nil {
			return nil, err
		}
		return storage.NewDatabaseStore(db), nil
	default:
		return storage.NewFileStore(cfg.Storage.DataDir, storage.FileNames{
			AuthorizedSenders: cfg.Storage.AuthorizedSendersFile,
			Contacts:          cfg.Storage.ContactsFile,
			Consent:           cfg.Storage.ConsentFile,
			Sessions:          cfg.Storage.SessionsFile,
			Orders:            cfg.Storage.OrdersFile,
		}), nil
	}
}

func newSender(cfg *config.Config, log *slog.Logger) (services.MessageSender, error) {
	if cfg.Gateway == config.GatewayTwilio {
		return services.NewTwilioService(cfg.Twilio, log)
	}
	return services.NewEvolutionService(cfg.Evolution, log)
}
