package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/vitalsheet/whatsapp-backend/internal/googleauth"
	"github.com/vitalsheet/whatsapp-backend/internal/services"
	"github.com/vitalsheet/whatsapp-backend/internal/storage"
)

// AuthHandler completes the OAuth redirect dance and provisions the
// spreadsheet for first-time users.
type AuthHandler struct {
	registry *googleauth.Registry
	store    storage.Store
	gateway  services.Gateway
	logger   *zap.Logger
}

func NewAuthHandler(registry *googleauth.Registry, store storage.Store, gateway services.Gateway, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		registry: registry,
		store:    store,
		gateway:  gateway,
		logger:   logger,
	}
}

// Begin redirects the browser to the provider's authorization URL. The
// opaque state is passed through unmodified for round-trip correlation.
func (h *AuthHandler) Begin(c *fiber.Ctx) error {
	state := c.Params("state")
	h.logger.Info("authorization start", zap.String("state", state))

	userID, err := services.DecodeState(state)
	if err != nil {
		h.logger.Error("invalid authorization state", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).SendString("Invalid state parameter.")
	}

	handle := h.registry.Handle(userID)
	return c.Redirect(handle.AuthCodeURL(state), fiber.StatusFound)
}

// Callback finishes the flow: exchange the code, ensure the spreadsheet
// exists, persist the credential pair, and tell the user how it went.
func (h *AuthHandler) Callback(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")
	ctx := c.UserContext()

	userID, err := services.DecodeState(state)
	if err != nil {
		h.logger.Error("invalid callback state", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).SendString("Invalid state parameter.")
	}
	log := h.logger.With(zap.String("user_id", userID))

	if code == "" {
		h.notify(ctx, userID, services.ConnectFailed)
		return c.Status(fiber.StatusBadRequest).SendString("Authorization code is missing.")
	}

	handle := h.registry.Handle(userID)
	token, err := handle.Exchange(ctx, code)
	if err != nil {
		log.Error("oauth callback error", zap.Error(err))
		h.notify(ctx, userID, services.ConnectFailed)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "Authentication failed! Please retry again."})
	}
	handle.SetToken(token)

	// Re-use an existing spreadsheet: it is created at most once per user.
	spreadsheetID, err := h.store.FindSpreadsheet(ctx, userID, handle)
	if err != nil {
		log.Error("spreadsheet lookup failed", zap.Error(err))
	}
	if spreadsheetID == "" {
		spreadsheetID, err = h.store.CreateSpreadsheet(ctx, userID, handle)
		if err != nil || spreadsheetID == "" {
			h.notify(ctx, userID, services.ConnectFailed)
			return c.Status(fiber.StatusInternalServerError).
				SendString("Failed to create spreadsheet.")
		}
	}

	if err := h.store.WriteProfile(ctx, handle, userID, spreadsheetID, token); err != nil {
		log.Error("persisting credential failed", zap.Error(err))
		h.notify(ctx, userID, services.ConnectFailed)
		return c.Status(fiber.StatusInternalServerError).
			SendString("Failed to update tokens: " + err.Error())
	}

	log.Info("authorization completed", zap.String("spreadsheet_id", spreadsheetID))
	h.notify(ctx, userID, services.ConnectFinished)
	return c.Status(fiber.StatusOK).
		JSON(fiber.Map{"message": "Authentication successful! You can close this window."})
}

// notify is best-effort: a failed outbound message never changes the
// HTTP response already decided on.
func (h *AuthHandler) notify(ctx context.Context, userID string, step services.ConnectStep) {
	if err := h.gateway.SendAuthLink(ctx, userID, step); err != nil {
		h.logger.Error("auth notification failed",
			zap.Error(err), zap.String("user_id", userID), zap.String("step", string(step)))
	}
}
