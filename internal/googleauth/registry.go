package googleauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/vitalsheet/whatsapp-backend/internal/models"
	"github.com/vitalsheet/whatsapp-backend/pkg/config"
)

// expirySkew is subtracted from the token expiry so a token that is about
// to lapse mid-request already counts as expired.
const expirySkew = 5 * time.Minute

// ErrNoCredentials is returned when a handle is asked to refresh before
// any token has been applied to it.
var ErrNoCredentials = errors.New("no credentials applied to client handle")

// NewConfig builds the process-wide oauth2 configuration. Client id,
// secret and redirect are constants for the process; only per-user tokens
// vary.
func NewConfig(g config.GoogleConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     g.ClientID,
		ClientSecret: g.ClientSecret,
		RedirectURL:  g.RedirectURI,
		Scopes:       strings.Fields(g.Scopes),
		Endpoint:     google.Endpoint,
	}
}

// Registry caches one client handle per user. It is owned by the
// composition root and passed by reference to the components that need it,
// so tests can isolate themselves with a fresh instance.
//
// Handles are never evicted. Unbounded growth is an accepted tradeoff for
// this single-instance deployment.
type Registry struct {
	cfg    *oauth2.Config
	logger *zap.Logger

	mu      sync.Mutex
	handles map[string]*Handle
}

func NewRegistry(cfg *oauth2.Config, logger *zap.Logger) *Registry {
	return &Registry{
		cfg:     cfg,
		logger:  logger,
		handles: make(map[string]*Handle),
	}
}

// Handle returns the cached client handle for a user, creating it on
// first access.
func (r *Registry) Handle(userID string) *Handle {
	userID = models.SanitizeUserID(userID)

	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.handles[userID]
	if !ok {
		r.logger.Info("creating oauth client handle", zap.String("user_id", userID))
		h = &Handle{userID: userID, cfg: r.cfg}
		r.handles[userID] = h
	}
	return h
}

// Len reports how many handles are cached, for monitoring.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

// Handle is the per-user OAuth client state. Concurrent requests for the
// same user share one handle; token updates are last-write-wins.
type Handle struct {
	userID string
	cfg    *oauth2.Config

	mu    sync.Mutex
	token *oauth2.Token
}

// UserID returns the sanitized user this handle belongs to.
func (h *Handle) UserID() string { return h.userID }

// AuthCodeURL builds the provider authorization URL with offline access
// and forced consent, embedding the caller-supplied opaque state.
func (h *Handle) AuthCodeURL(state string) string {
	return h.cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))
}

// Exchange trades an authorization code for a token at the provider.
func (h *Handle) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := h.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("authorization code exchange failed: %w", err)
	}
	return tok, nil
}

// SetToken applies credentials so subsequent calls through this handle
// are authorized.
func (h *Handle) SetToken(tok *oauth2.Token) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = tok
}

// Token returns the currently applied token, or nil.
func (h *Handle) Token() *oauth2.Token {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.token
}

// RefreshIfNeeded refreshes the applied token when it is expired and a
// refresh token is available. The caller is responsible for persisting
// the credential when refreshed is true; nothing is written here.
func (h *Handle) RefreshIfNeeded(ctx context.Context) (tok *oauth2.Token, refreshed bool, err error) {
	cur := h.Token()
	if cur == nil {
		return nil, false, ErrNoCredentials
	}
	if !IsExpired(cur) {
		return cur, false, nil
	}

	fresh, err := h.cfg.TokenSource(ctx, cur).Token()
	if err != nil {
		return nil, false, fmt.Errorf("token refresh failed: %w", err)
	}
	// The provider omits the refresh token on renewals; keep the old one.
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = cur.RefreshToken
	}
	h.SetToken(fresh)
	return fresh, fresh.AccessToken != cur.AccessToken, nil
}

// HTTPClient returns an authorized client for the Google services. A
// silent refresh performed by the transport is written back to the
// handle so its state stays current.
func (h *Handle) HTTPClient(ctx context.Context) *http.Client {
	return oauth2.NewClient(ctx, &handleTokenSource{
		h:   h,
		src: h.cfg.TokenSource(ctx, h.Token()),
	})
}

type handleTokenSource struct {
	h   *Handle
	src oauth2.TokenSource
}

func (ts *handleTokenSource) Token() (*oauth2.Token, error) {
	tok, err := ts.src.Token()
	if err != nil {
		return nil, err
	}
	ts.h.SetToken(tok)
	return tok, nil
}

// IsExpired reports whether a token must be refreshed before use: no
// expiry recorded, or within the skew buffer of expiring.
func IsExpired(tok *oauth2.Token) bool {
	if tok == nil || tok.Expiry.IsZero() {
		return true
	}
	return !time.Now().Before(tok.Expiry.Add(-expirySkew))
}
