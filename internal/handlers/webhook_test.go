package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingDispatcher captures what the webhook handler routed.
type recordingDispatcher struct {
	texts        []string
	interactives []string
	statuses     []string
}

func (d *recordingDispatcher) HandleText(_ context.Context, _, _, body string) {
	d.texts = append(d.texts, body)
}

func (d *recordingDispatcher) HandleInteractive(_ context.Context, _, _, selection string) {
	d.interactives = append(d.interactives, selection)
}

func (d *recordingDispatcher) HandleStatus(_ context.Context, status, _ string) {
	d.statuses = append(d.statuses, status)
}

func newWebhookApp(dispatcher *recordingDispatcher) *fiber.App {
	h := NewWebhookHandler(dispatcher, "verify-secret", zap.NewNop())
	app := fiber.New()
	app.Get("/webhook", h.Verify)
	app.Post("/webhook", h.Receive)
	return app
}

func TestVerify_CorrectToken(t *testing.T) {
	app := newWebhookApp(&recordingDispatcher{})

	req := httptest.NewRequest(http.MethodGet,
		"/webhook?hub.mode=subscribe&hub.verify_token=verify-secret&hub.challenge=challenge-42", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "challenge-42", string(body))
}

func TestVerify_WrongToken(t *testing.T) {
	app := newWebhookApp(&recordingDispatcher{})

	req := httptest.NewRequest(http.MethodGet,
		"/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=challenge-42", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	// The challenge must not leak on a failed handshake.
	assert.NotContains(t, string(body), "challenge-42")
}

func TestVerify_WrongMode(t *testing.T) {
	app := newWebhookApp(&recordingDispatcher{})

	req := httptest.NewRequest(http.MethodGet,
		"/webhook?hub.mode=unsubscribe&hub.verify_token=verify-secret&hub.challenge=c", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func postWebhook(t *testing.T, app *fiber.App, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestReceive_TextMessage(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	app := newWebhookApp(dispatcher)

	resp := postWebhook(t, app, `{
		"object": "whatsapp_business_account",
		"entry": [{"changes": [{"field": "messages", "value": {
			"contacts": [{"wa_id": "15551234567"}],
			"messages": [{"from": "15551234567", "type": "text", "text": {"body": "F 95"}}]
		}}]}]
	}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"F 95"}, dispatcher.texts)
}

func TestReceive_InteractiveMessage(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	app := newWebhookApp(dispatcher)

	resp := postWebhook(t, app, `{
		"entry": [{"changes": [{"field": "messages", "value": {
			"contacts": [{"wa_id": "15551234567"}],
			"messages": [{"from": "15551234567", "type": "interactive",
				"interactive": {"type": "button_reply", "button_reply": {"id": "bp", "title": "x"}}}]
		}}]}]
	}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"bp"}, dispatcher.interactives)
}

func TestReceive_Status(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	app := newWebhookApp(dispatcher)

	resp := postWebhook(t, app, `{
		"entry": [{"changes": [{"field": "messages", "value": {
			"statuses": [{"id": "wamid.1", "status": "read", "recipient_id": "15551234567"}]
		}}]}]
	}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"read"}, dispatcher.statuses)
}

func TestReceive_MalformedBody(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	app := newWebhookApp(dispatcher)

	resp := postWebhook(t, app, `{not json`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, dispatcher.texts)
}

func TestReceive_NonActionableEnvelope(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	app := newWebhookApp(dispatcher)

	resp := postWebhook(t, app, `{"entry": []}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, dispatcher.texts)
}
