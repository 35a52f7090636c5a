package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vitalsheet/whatsapp-backend/internal/handlers"
	"github.com/vitalsheet/whatsapp-backend/internal/middleware"
)

// SetupRoutes configures the full HTTP surface.
func SetupRoutes(app *fiber.App, webhook *handlers.WebhookHandler, auth *handlers.AuthHandler, health *handlers.HealthHandler, appSecret string) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "WhatsApp Vitals Bot",
			"endpoints": fiber.Map{
				"health":   "/health",
				"webhook":  "/webhook",
				"auth":     "/auth/:state",
				"callback": "/oauth2callback",
				"metrics":  "/metrics",
			},
		})
	})

	app.Get("/health", health.Check)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Provider verification handshake and event delivery.
	app.Get("/webhook", webhook.Verify)
	if appSecret != "" {
		app.Post("/webhook", middleware.ValidateMetaSignature(appSecret), webhook.Receive)
	} else {
		app.Post("/webhook", webhook.Receive)
	}

	// Authorization flow.
	app.Get("/auth/:state", auth.Begin)
	app.Get("/oauth2callback", auth.Callback)
}
