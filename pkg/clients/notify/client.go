package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/flockbook/internal/config"
)

// ErrDisabled is returned when no webhook URL is configured.
var ErrDisabled = errors.New("notifier disabled")

// Notifier delivers summary messages to an external channel.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// Message is the webhook payload.
type Message struct {
	Title   string    `json:"title"`
	Text    string    `json:"text"`
	SentAt  time.Time `json:"sentAt"`
	Channel string    `json:"channel,omitempty"`
}

// WebhookClient is a resty-backed implementation of Notifier.
type WebhookClient struct {
	httpClient *resty.Client
	url        string
}

// apiError is the error body returned by most webhook receivers.
type apiError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// NewClient builds a webhook client. The returned client fails every Send
// with ErrDisabled when the URL is empty.
func NewClient(cfg config.NotifyConfig) *WebhookClient {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)
	if cfg.Token != "" {
		restyClient.SetAuthToken(cfg.Token)
	}

	return &WebhookClient{httpClient: restyClient, url: cfg.WebhookURL}
}

// Send posts the message to the webhook.
func (c *WebhookClient) Send(ctx context.Context, msg Message) error {
	if c.url == "" {
		return ErrDisabled
	}
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now().UTC()
	}

	apiErr := new(apiError)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(msg).
		SetError(apiErr).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := apiErr.Message
		if message == "" {
			message = apiErr.Error
		}
		return fmt.Errorf("webhook error: code=%d, message=%s", resp.StatusCode(), message)
	}

	return nil
}
