package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/vitalsheet/whatsapp-backend/internal/googleauth"
	"github.com/vitalsheet/whatsapp-backend/internal/handlers"
	"github.com/vitalsheet/whatsapp-backend/internal/routes"
	"github.com/vitalsheet/whatsapp-backend/internal/services"
	"github.com/vitalsheet/whatsapp-backend/internal/storage"
	"github.com/vitalsheet/whatsapp-backend/pkg/config"
)

const version = "1.0.0"

func main() {
	// Load .env for local development; deployed environments set real vars.
	if err := godotenv.Load(".env"); err != nil {
		if err := godotenv.Load("environments/.env.development"); err != nil {
			// Nothing to load; environment variables only.
		}
	}

	zlog, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer zlog.Sync()

	cfg, err := config.LoadConfig(os.Getenv("CONFIG_FILE"))
	if err != nil {
		zlog.Fatal("failed to load config", zap.Error(err))
	}
	if err := cfg.Validate(); err != nil {
		zlog.Fatal("invalid configuration", zap.Error(err))
	}

	// The registry is the one piece of shared mutable state; it is owned
	// here and passed down by reference.
	registry := googleauth.NewRegistry(googleauth.NewConfig(cfg.Google), zlog)

	var store storage.Store
	if cfg.Server.UseMemoryStore {
		zlog.Warn("using in-memory store (not for production)")
		store = storage.NewMemoryStore()
	} else {
		store = storage.NewGoogleStore(zlog)
	}

	gateway := services.NewGraphGateway(cfg.WhatsApp, cfg.Server.PublicBaseURL, zlog)
	resolver := services.NewResolver(registry, store, zlog)
	dispatcher := services.NewDispatcher(resolver, gateway, store, registry, zlog)

	// Optional smoke message so a deploy can be verified end to end.
	if n := cfg.WhatsApp.TestingNumber; n != "" {
		go func() {
			if err := gateway.SendText(context.Background(), n, "✅ Bot started successfully."); err != nil {
				zlog.Warn("startup test message failed", zap.Error(err))
			}
		}()
	}

	webhookHandler := handlers.NewWebhookHandler(dispatcher, cfg.WhatsApp.VerifyToken, zlog)
	authHandler := handlers.NewAuthHandler(registry, store, gateway, zlog)
	healthHandler := handlers.NewHealthHandler(version, registry)

	app := fiber.New(fiber.Config{
		AppName: "WhatsApp Vitals Bot v" + version,
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

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	routes.SetupRoutes(app, webhookHandler, authHandler, healthHandler, cfg.WhatsApp.AppSecret)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-quit
		zlog.Info("shutting down")
		_ = app.Shutdown()
	}()

	zlog.Info("starting server",
		zap.String("port", cfg.Server.Port),
		zap.String("webhook", "/webhook"),
		zap.Bool("memory_store", cfg.Server.UseMemoryStore))

	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		zlog.Fatal("server error", zap.Error(err))
	}
}
