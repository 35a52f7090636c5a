package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/vitalsheet/whatsapp-backend/internal/googleauth"
	"github.com/vitalsheet/whatsapp-backend/internal/metrics"
	"github.com/vitalsheet/whatsapp-backend/internal/models"
	"github.com/vitalsheet/whatsapp-backend/internal/storage"
)

// SessionResolver computes the session state for a user. Implementations
// never return an error: every failure mode folds into "no session".
type SessionResolver interface {
	Resolve(ctx context.Context, userID string) models.SessionRecord
}

// Resolver derives a fresh SessionRecord per call by combining the
// credential store and the OAuth client registry. No state survives
// between invocations beyond the registry's client cache.
type Resolver struct {
	registry *googleauth.Registry
	store    storage.Store
	logger   *zap.Logger
}

func NewResolver(registry *googleauth.Registry, store storage.Store, logger *zap.Logger) *Resolver {
	return &Resolver{registry: registry, store: store, logger: logger}
}

// Resolve walks the session state machine. Ambiguity is always treated
// as "must reauthorize", never as "trust the session".
func (r *Resolver) Resolve(ctx context.Context, userID string) models.SessionRecord {
	record := r.resolve(ctx, userID)
	metrics.SessionResolutions.WithLabelValues(string(record.State)).Inc()
	return record
}

func (r *Resolver) resolve(ctx context.Context, userID string) models.SessionRecord {
	noSession := models.SessionRecord{State: models.StateNoSession, NeedsReauth: true}

	userID = models.SanitizeUserID(userID)
	handle := r.registry.Handle(userID)
	log := r.logger.With(zap.String("user_id", userID))

	spreadsheetID, err := r.store.FindSpreadsheet(ctx, userID, handle)
	if err != nil {
		log.Error("session check: spreadsheet lookup failed", zap.Error(err))
		return noSession
	}
	if spreadsheetID == "" {
		log.Info("session check: no spreadsheet, first-time user")
		return noSession
	}
	noSession.SpreadsheetID = spreadsheetID

	profile, err := r.store.ReadProfile(ctx, userID, spreadsheetID, handle)
	if err != nil {
		log.Error("session check: profile read failed", zap.Error(err))
		return noSession
	}
	if profile == nil || profile.AccessToken == "" {
		log.Info("session check: no stored credential")
		return noSession
	}

	token := profile.Credential.Token()
	handle.SetToken(token)

	if !googleauth.IsExpired(token) {
		if r.store.Probe(ctx, spreadsheetID, handle) {
			return models.SessionRecord{
				State:         models.StateValid,
				Credential:    &profile.Credential,
				SpreadsheetID: spreadsheetID,
			}
		}
		log.Warn("session check: credential present but probe rejected")
		return models.SessionRecord{
			State:         models.StateRevoked,
			SpreadsheetID: spreadsheetID,
			NeedsReauth:   true,
		}
	}

	if profile.RefreshToken == "" {
		log.Warn("session check: expired credential without refresh token")
		return models.SessionRecord{
			State:         models.StateExpiredNoRefresh,
			SpreadsheetID: spreadsheetID,
			NeedsReauth:   true,
		}
	}

	fresh, refreshed, err := handle.RefreshIfNeeded(ctx)
	if err != nil {
		log.Warn("session check: token refresh failed", zap.Error(err))
		return models.SessionRecord{
			State:         models.StateRevoked,
			SpreadsheetID: spreadsheetID,
			NeedsReauth:   true,
		}
	}
	if refreshed {
		// The refreshed credential must survive the process; losing it
		// would strand the user on the next message.
		if err := r.store.WriteProfile(ctx, handle, userID, spreadsheetID, fresh); err != nil {
			log.Error("session check: persisting refreshed credential failed", zap.Error(err))
		} else {
			log.Info("session check: refreshed credential persisted")
		}
	}

	cred := models.CredentialFromToken(fresh)
	if cred.Scope == "" {
		cred.Scope = profile.Scope
	}
	return models.SessionRecord{
		State:         models.StateExpiredWithRefresh,
		Credential:    &cred,
		SpreadsheetID: spreadsheetID,
	}
}
