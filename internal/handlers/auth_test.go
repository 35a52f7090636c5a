package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/vitalsheet/whatsapp-backend/internal/googleauth"
	"github.com/vitalsheet/whatsapp-backend/internal/models"
	"github.com/vitalsheet/whatsapp-backend/internal/services"
	"github.com/vitalsheet/whatsapp-backend/internal/storage"
)

// recordingGateway captures auth-step notifications.
type recordingGateway struct {
	steps []services.ConnectStep
}

func (g *recordingGateway) SendText(_ context.Context, _, _ string) error { return nil }

func (g *recordingGateway) SendReadingPrompt(_ context.Context, _ string, _ models.ReadingKind) error {
	return nil
}

func (g *recordingGateway) SendReadingConfirmation(_ context.Context, _ string, _ models.Reading) error {
	return nil
}

func (g *recordingGateway) SendAuthLink(_ context.Context, _ string, step services.ConnectStep) error {
	g.steps = append(g.steps, step)
	return nil
}

type authFixture struct {
	app     *fiber.App
	store   *storage.MemoryStore
	gateway *recordingGateway
}

func newAuthFixture(t *testing.T, endpoint oauth2.Endpoint) *authFixture {
	t.Helper()
	registry := googleauth.NewRegistry(&oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "https://bot.example.com/oauth2callback",
		Endpoint:     endpoint,
	}, zap.NewNop())
	store := storage.NewMemoryStore()
	gateway := &recordingGateway{}
	h := NewAuthHandler(registry, store, gateway, zap.NewNop())

	app := fiber.New()
	app.Get("/auth/:state", h.Begin)
	app.Get("/oauth2callback", h.Callback)
	return &authFixture{app: app, store: store, gateway: gateway}
}

func TestBegin_RedirectsToProvider(t *testing.T) {
	f := newAuthFixture(t, oauth2.Endpoint{AuthURL: "https://provider.example.com/auth"})
	state := services.EncodeState("15551234567")

	resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/auth/"+state, nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "provider.example.com", loc.Host)
	q := loc.Query()
	assert.Equal(t, state, q.Get("state"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
}

func TestBegin_InvalidState(t *testing.T) {
	f := newAuthFixture(t, oauth2.Endpoint{})

	resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/auth/%21%21%21", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCallback_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "auth-code", r.FormValue("code"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at","refresh_token":"rt","token_type":"Bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	f := newAuthFixture(t, oauth2.Endpoint{TokenURL: srv.URL})
	state := services.EncodeState("15551234567")

	resp, err := f.app.Test(httptest.NewRequest(http.MethodGet,
		"/oauth2callback?code=auth-code&state="+url.QueryEscape(state), nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	sheetID, err := f.store.FindSpreadsheet(context.Background(), "15551234567", nil)
	require.NoError(t, err)
	require.NotEmpty(t, sheetID)

	profile, err := f.store.ReadProfile(context.Background(), "15551234567", sheetID, nil)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "at", profile.AccessToken)
	assert.Equal(t, "rt", profile.RefreshToken)

	assert.Equal(t, []services.ConnectStep{services.ConnectFinished}, f.gateway.steps)
}

func TestCallback_ReusesExistingSpreadsheet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at-2","token_type":"Bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	f := newAuthFixture(t, oauth2.Endpoint{TokenURL: srv.URL})
	existing, err := f.store.CreateSpreadsheet(context.Background(), "15551234567", nil)
	require.NoError(t, err)

	state := services.EncodeState("15551234567")
	resp, err := f.app.Test(httptest.NewRequest(http.MethodGet,
		"/oauth2callback?code=auth-code&state="+url.QueryEscape(state), nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	sheetID, err := f.store.FindSpreadsheet(context.Background(), "15551234567", nil)
	require.NoError(t, err)
	assert.Equal(t, existing, sheetID)
}

func TestCallback_MissingCode(t *testing.T) {
	f := newAuthFixture(t, oauth2.Endpoint{})
	state := services.EncodeState("15551234567")

	resp, err := f.app.Test(httptest.NewRequest(http.MethodGet,
		"/oauth2callback?state="+url.QueryEscape(state), nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, []services.ConnectStep{services.ConnectFailed}, f.gateway.steps)
}

func TestCallback_ExchangeRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	f := newAuthFixture(t, oauth2.Endpoint{TokenURL: srv.URL})
	state := services.EncodeState("15551234567")

	resp, err := f.app.Test(httptest.NewRequest(http.MethodGet,
		"/oauth2callback?code=bad-code&state="+url.QueryEscape(state), nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, []services.ConnectStep{services.ConnectFailed}, f.gateway.steps)
}

func TestCallback_InvalidState(t *testing.T) {
	f := newAuthFixture(t, oauth2.Endpoint{})

	resp, err := f.app.Test(httptest.NewRequest(http.MethodGet,
		"/oauth2callback?code=auth-code&state=%21%21%21", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, f.gateway.steps)
}
