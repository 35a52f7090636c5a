package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vitalsheet/whatsapp-backend/internal/googleauth"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	Version  string
	registry *googleauth.Registry
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, registry *googleauth.Registry) *HealthHandler {
	return &HealthHandler{
		Version:  version,
		registry: registry,
	}
}

// Check returns the health status of the service
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":        "OK",
		"service":       "WhatsApp Vitals Bot",
		"version":       h.Version,
		"oauth_clients": h.registry.Len(),
	})
}
