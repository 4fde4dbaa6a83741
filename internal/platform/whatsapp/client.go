package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/taskroster-api/internal/config"
	"github.com/phrazzld/taskroster-api/internal/platform/logger"
	"github.com/phrazzld/taskroster-api/internal/redact"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 64 << 10

// Client sends messages through the WhatsApp Cloud API.
type Client struct {
	httpClient       *http.Client
	endpoint         string
	accessToken      string
	templateName     string
	templateLanguage string
	logger           *slog.Logger
}

// NewClient builds a Client from the notify configuration. A nil httpClient
// gets a default client whose timeout matches cfg.TimeoutSeconds.
func NewClient(cfg config.NotifyConfig, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" || cfg.APIVersion == "" || cfg.PhoneNumberID == "" {
		return nil, fmt.Errorf("%w: base URL, API version and phone number ID are required", ErrInvalidConfig)
	}
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("%w: access token is required", ErrInvalidConfig)
	}

	if httpClient == nil {
		timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	language := cfg.TemplateLanguage
	if language == "" {
		language = "en_US"
	}

	return &Client{
		httpClient: httpClient,
		endpoint: fmt.Sprintf("%s/%s/%s/messages",
			strings.TrimRight(cfg.BaseURL, "/"), cfg.APIVersion, cfg.PhoneNumberID),
		accessToken:      cfg.AccessToken,
		templateName:     cfg.TemplateName,
		templateLanguage: language,
		logger:           logger.With("component", "whatsapp_client"),
	}, nil
}

type messageRequest struct {
	MessagingProduct string           `json:"messaging_product"`
	RecipientType    string           `json:"recipient_type"`
	To               string           `json:"to"`
	Type             string           `json:"type"`
	Text             *textContent     `json:"text,omitempty"`
	Template         *templateContent `json:"template,omitempty"`
}

type textContent struct {
	PreviewURL bool   `json:"preview_url"`
	Body       string `json:"body"`
}

type templateContent struct {
	Name     string   `json:"name"`
	Language language `json:"language"`
}

type language struct {
	Code string `json:"code"`
}

type messageResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// Send delivers body to the phone number to. With a template configured the
// template is sent instead and body is not transmitted.
func (c *Client) Send(ctx context.Context, to, body string) error {
	log := logger.FromContextOrDefault(ctx, c.logger)

	recipient, err := NormalizePhone(to)
	if err != nil {
		return err
	}

	msg := messageRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               recipient,
	}
	if c.templateName != "" {
		msg.Type = "template"
		msg.Template = &templateContent{
			Name:     c.templateName,
			Language: language{Code: c.templateLanguage},
		}
	} else {
		msg.Type = "text"
		msg.Text = &textContent{Body: body}
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode whatsapp message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build whatsapp request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read whatsapp response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var er errorResponse
		if json.Unmarshal(respBody, &er) == nil {
			apiErr.Code = er.Error.Code
			apiErr.Type = er.Error.Type
			apiErr.Message = er.Error.Message
		}
		log.Warn("whatsapp api rejected message",
			"status", resp.StatusCode,
			"error", redact.Error(apiErr),
			"to", redact.Phone(recipient))
		return apiErr
	}

	var ok messageResponse
	if err := json.Unmarshal(respBody, &ok); err == nil && len(ok.Messages) > 0 {
		log.Debug("whatsapp message accepted",
			"message_id", ok.Messages[0].ID,
			"to", redact.Phone(recipient))
	}

	return nil
}

// NormalizePhone strips formatting and the leading '+' from a phone number,
// which is the form the Cloud API expects.
func NormalizePhone(phone string) (string, error) {
	var b strings.Builder
	for _, r := range strings.TrimPrefix(strings.TrimSpace(phone), "+") {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return "", fmt.Errorf("%w: unexpected character %q", ErrInvalidRecipient, r)
		}
	}
	digits := b.String()
	if len(digits) < 7 || len(digits) > 15 {
		return "", fmt.Errorf("%w: must have 7 to 15 digits", ErrInvalidRecipient)
	}
	return digits, nil
}
