package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vitalsheet/whatsapp-backend/internal/metrics"
	"github.com/vitalsheet/whatsapp-backend/internal/models"
	"github.com/vitalsheet/whatsapp-backend/pkg/config"
)

// sendTimeout bounds every outbound provider call.
const sendTimeout = 15 * time.Second

// EncodeState wraps a user identifier for the authorization round trip.
func EncodeState(userID string) string {
	return base64.StdEncoding.EncodeToString([]byte(userID))
}

// DecodeState reverses EncodeState, tolerating the unpadded form and the
// quoting artifacts upstream encoders wrap around the identifier.
func DecodeState(state string) (string, error) {
	state = strings.TrimPrefix(state, ":")
	raw, err := base64.StdEncoding.DecodeString(state)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(state)
	}
	if err != nil {
		return "", fmt.Errorf("decoding state: %w", err)
	}
	return models.SanitizeUserID(string(raw)), nil
}

// Gateway is the outbound side of the messaging provider.
type Gateway interface {
	SendText(ctx context.Context, to, body string) error
	SendReadingPrompt(ctx context.Context, to string, kind models.ReadingKind) error
	SendReadingConfirmation(ctx context.Context, to string, r models.Reading) error
	SendAuthLink(ctx context.Context, to string, step ConnectStep) error
}

// GraphGateway sends messages through the Meta Graph API.
type GraphGateway struct {
	client      *http.Client
	endpoint    string
	token       string
	authBaseURL string
	logger      *zap.Logger
}

func NewGraphGateway(wa config.WhatsAppConfig, publicBaseURL string, logger *zap.Logger) *GraphGateway {
	return &GraphGateway{
		client:      &http.Client{Timeout: sendTimeout},
		endpoint:    wa.MessagesEndpoint(),
		token:       wa.GraphToken,
		authBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
		logger:      logger,
	}
}

func (g *GraphGateway) SendText(ctx context.Context, to, body string) error {
	return g.send(ctx, "text", textPayload(to, body))
}

func (g *GraphGateway) SendReadingPrompt(ctx context.Context, to string, kind models.ReadingKind) error {
	return g.send(ctx, "reading_prompt", readingPromptPayload(to, kind))
}

func (g *GraphGateway) SendReadingConfirmation(ctx context.Context, to string, r models.Reading) error {
	return g.send(ctx, "reading_confirmation", readingConfirmationPayload(to, r))
}

func (g *GraphGateway) SendAuthLink(ctx context.Context, to string, step ConnectStep) error {
	authURL := fmt.Sprintf("%s/auth/%s", g.authBaseURL, EncodeState(to))
	return g.send(ctx, string(step), authLinkPayload(to, step, authURL))
}

func (g *GraphGateway) send(ctx context.Context, kind string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s payload: %w", kind, err)
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building %s request: %w", kind, err)
	}
	req.Header.Set("Authorization", "Bearer "+g.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		metrics.OutboundMessages.WithLabelValues(kind, "error").Inc()
		return fmt.Errorf("sending %s message: %w", kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		metrics.OutboundMessages.WithLabelValues(kind, "rejected").Inc()
		g.logger.Error("provider rejected message",
			zap.String("kind", kind),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("detail", detail))
		return fmt.Errorf("provider rejected %s message: status %d", kind, resp.StatusCode)
	}

	metrics.OutboundMessages.WithLabelValues(kind, "ok").Inc()
	g.logger.Info("message sent", zap.String("kind", kind), zap.String("to", recipientOf(payload)))
	return nil
}

func recipientOf(payload map[string]any) string {
	s, _ := payload["to"].(string)
	return s
}
