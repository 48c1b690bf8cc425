package sendgrid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/emmanuelnwankwo/api-template/internal/mailer"
	"github.com/emmanuelnwankwo/api-template/pkg/httpclient"
)

// defaultBaseURL is the SendGrid v3 API endpoint.
const defaultBaseURL = "https://api.sendgrid.com"

// sendTimeout bounds a single delivery attempt so a slow provider cannot
// stall the calling operation indefinitely.
const sendTimeout = 10 * time.Second

// Config holds SendGrid mailer configuration.
type Config struct {
	APIKey string
	From   string
	// BaseURL overrides the SendGrid endpoint; used in tests.
	BaseURL string
}

// Mailer delivers templated emails through the SendGrid v3 mail send API.
// Outbound calls go through a circuit breaker so a degraded provider fails
// fast instead of tying up request handlers.
type Mailer struct {
	client  *httpclient.CircuitBreakerClient
	apiKey  string
	from    string
	baseURL string
	logger  *slog.Logger
}

// New creates a SendGrid mailer.
func New(cfg Config, logger *slog.Logger) *Mailer {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}

	client := httpclient.New(httpclient.DefaultConfig())
	cbClient := httpclient.NewCircuitBreakerClient(client, httpclient.DefaultCircuitBreakerConfig("sendgrid"), logger)

	return &Mailer{
		client:  cbClient,
		apiKey:  cfg.APIKey,
		from:    cfg.From,
		baseURL: base,
		logger:  logger,
	}
}

// sendRequest is the SendGrid v3 mail send payload.
type sendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             emailAddress      `json:"from"`
	TemplateID       string            `json:"template_id"`
}

type personalization struct {
	To                  []emailAddress `json:"to"`
	DynamicTemplateData map[string]any `json:"dynamic_template_data"`
}

type emailAddress struct {
	Email string `json:"email"`
}

// Send makes one delivery attempt through the SendGrid API.
func (m *Mailer) Send(ctx context.Context, msg mailer.Message) error {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	payload := sendRequest{
		Personalizations: []personalization{{
			To: []emailAddress{{Email: msg.To}},
			DynamicTemplateData: map[string]any{
				"name":    msg.Name,
				"urlLink": msg.Link,
			},
		}},
		From:       emailAddress{Email: m.from},
		TemplateID: msg.TemplateID,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/v3/mail/send", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, string(detail))
	}

	m.logger.DebugContext(ctx, "mail delivered",
		slog.String("to", msg.To),
		slog.String("template_id", msg.TemplateID),
	)

	return nil
}
