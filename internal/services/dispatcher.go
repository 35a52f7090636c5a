package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vitalsheet/whatsapp-backend/internal/classifier"
	"github.com/vitalsheet/whatsapp-backend/internal/googleauth"
	"github.com/vitalsheet/whatsapp-backend/internal/models"
	"github.com/vitalsheet/whatsapp-backend/internal/storage"
)

// greetingToken always restarts the conversation. It deliberately skips
// session resolution so a user can re-trigger onboarding at any time.
const greetingToken = "Hi"

const (
	welcomeMessage = "🙏🏼 *Welcome !!*\n\n_Please read below message:_\n\n🔐 *Privacy Disclaimer*\nData is saved only on your Google Sheet.\nThere is no server storage."
	expiredMessage = "⚠️ Your session has expired. Please reconnect your Google Sheet."
	connectMessage = "⚠️ Please connect your Google Sheet first before using this feature."
	saveFailedMsg  = "❌ Failed to save data. Please try again."
)

// Dispatcher routes inbound events to the right conversational step and
// decides what gets persisted.
type Dispatcher struct {
	resolver SessionResolver
	gateway  Gateway
	store    storage.Store
	registry *googleauth.Registry
	clock    func() time.Time
	logger   *zap.Logger
}

func NewDispatcher(resolver SessionResolver, gateway Gateway, store storage.Store, registry *googleauth.Registry, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		resolver: resolver,
		gateway:  gateway,
		store:    store,
		registry: registry,
		clock:    time.Now,
		logger:   logger,
	}
}

// HandleText processes a regular text message.
func (d *Dispatcher) HandleText(ctx context.Context, from, userID, body string) {
	d.logger.Info("text message received",
		zap.String("user_id", userID), zap.String("body", body))

	record := models.SessionRecord{State: models.StateNoSession, NeedsReauth: true}
	if body != greetingToken {
		record = d.resolver.Resolve(ctx, userID)
		d.logger.Info("session resolved",
			zap.String("user_id", userID), zap.String("state", string(record.State)))
	}

	switch {
	case record.CanProcess():
		d.handleAuthenticated(ctx, from, userID, body, record.SpreadsheetID)
	case record.State == models.StateNoSession:
		d.handleFirstTimeUser(ctx, from)
	default:
		d.handleExpiredSession(ctx, from)
	}
}

// HandleInteractive processes a button or list selection. Unlike text,
// interactive events always resolve the session fresh.
func (d *Dispatcher) HandleInteractive(ctx context.Context, from, userID, selection string) {
	d.logger.Info("interactive message received",
		zap.String("user_id", userID), zap.String("selection", selection))

	record := d.resolver.Resolve(ctx, userID)
	if !record.CanProcess() {
		d.sendOrLog(ctx, func() error { return d.gateway.SendText(ctx, from, connectMessage) })
		d.sendOrLog(ctx, func() error { return d.gateway.SendAuthLink(ctx, from, ConnectStarted) })
		return
	}

	kind := models.ReadingNone
	switch selection {
	case string(models.ReadingBloodSugar):
		kind = models.ReadingBloodSugar
	case string(models.ReadingBloodPressure):
		kind = models.ReadingBloodPressure
	}
	d.sendOrLog(ctx, func() error { return d.gateway.SendReadingPrompt(ctx, from, kind) })
}

// HandleStatus records delivery/read receipts. Extension point for
// delivery tracking.
func (d *Dispatcher) HandleStatus(_ context.Context, status, userID string) {
	d.logger.Info("status received",
		zap.String("user_id", userID), zap.String("status", status))
}

func (d *Dispatcher) handleAuthenticated(ctx context.Context, from, userID, body, spreadsheetID string) {
	validated := classifier.Classify(body)
	if validated.Kind == models.ReadingNone {
		d.sendOrLog(ctx, func() error { return d.gateway.SendReadingPrompt(ctx, from, models.ReadingNone) })
		return
	}

	reading := classifier.Parse(validated, d.clock())
	handle := d.registry.Handle(userID)
	if err := d.store.AppendReading(ctx, reading, spreadsheetID, handle); err != nil {
		d.logger.Error("saving reading failed",
			zap.Error(err), zap.String("user_id", userID))
		d.sendOrLog(ctx, func() error { return d.gateway.SendText(ctx, from, saveFailedMsg) })
		return
	}

	d.logger.Info("reading saved",
		zap.String("user_id", userID), zap.String("kind", string(reading.Kind)))
	d.sendOrLog(ctx, func() error { return d.gateway.SendReadingConfirmation(ctx, from, reading) })
}

func (d *Dispatcher) handleFirstTimeUser(ctx context.Context, from string) {
	d.sendOrLog(ctx, func() error { return d.gateway.SendText(ctx, from, welcomeMessage) })
	d.sendOrLog(ctx, func() error { return d.gateway.SendAuthLink(ctx, from, ConnectStarted) })
}

func (d *Dispatcher) handleExpiredSession(ctx context.Context, from string) {
	d.sendOrLog(ctx, func() error { return d.gateway.SendText(ctx, from, expiredMessage) })
	d.sendOrLog(ctx, func() error { return d.gateway.SendAuthLink(ctx, from, ConnectStarted) })
}

// sendOrLog performs a best-effort outbound send; a provider failure is
// logged but never fails the inbound request.
func (d *Dispatcher) sendOrLog(_ context.Context, send func() error) {
	if err := send(); err != nil {
		d.logger.Error("outbound send failed", zap.Error(err))
	}
}
