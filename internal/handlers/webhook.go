package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/vitalsheet/whatsapp-backend/internal/metrics"
	"github.com/vitalsheet/whatsapp-backend/internal/models"
)

// EventDispatcher is the slice of the conversation dispatcher the webhook
// handler needs.
type EventDispatcher interface {
	HandleText(ctx context.Context, from, userID, body string)
	HandleInteractive(ctx context.Context, from, userID, selection string)
	HandleStatus(ctx context.Context, status, userID string)
}

// WebhookHandler terminates the messaging provider's webhook.
type WebhookHandler struct {
	dispatcher  EventDispatcher
	verifyToken string
	logger      *zap.Logger
}

func NewWebhookHandler(dispatcher EventDispatcher, verifyToken string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		dispatcher:  dispatcher,
		verifyToken: verifyToken,
		logger:      logger,
	}
}

// Verify answers the provider's subscription handshake: echo the
// challenge iff the mode is "subscribe" and the token matches.
func (h *WebhookHandler) Verify(c *fiber.Ctx) error {
	h.logger.Info("verification request received")

	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token == h.verifyToken {
		h.logger.Info("webhook verified successfully")
		return c.Status(fiber.StatusOK).SendString(challenge)
	}

	h.logger.Error("webhook verification failed")
	return c.Status(fiber.StatusForbidden).JSON("UNAUTHORIZED: Verification failed")
}

// Receive handles one inbound event delivery.
func (h *WebhookHandler) Receive(c *fiber.Ctx) error {
	var body models.WebhookBody
	if err := c.BodyParser(&body); err != nil {
		h.logger.Error("error processing webhook", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).
			JSON("INTERNAL_SERVER_ERROR: Error while processing webhook")
	}

	event, err := body.Event()
	if err != nil {
		h.logger.Info("no actionable message type found", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).
			JSON("INTERNAL_SERVER_ERROR: Error while processing webhook")
	}
	metrics.WebhookEvents.WithLabelValues(string(event.Type)).Inc()

	ctx := c.UserContext()
	switch event.Type {
	case models.EventText:
		h.dispatcher.HandleText(ctx, event.From, event.UserID, event.Body)
	case models.EventInteractive:
		h.dispatcher.HandleInteractive(ctx, event.From, event.UserID, event.Body)
	case models.EventStatus:
		h.dispatcher.HandleStatus(ctx, event.Status, event.UserID)
	}

	return c.Status(fiber.StatusOK).JSON("Data Received!")
}
