package configserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/bravo68web/confdash/internal/config"
	apperrors "github.com/bravo68web/confdash/pkg/errors"
	"github.com/bravo68web/confdash/pkg/logger"
)

// maxMessageLen bounds error text lifted from plain-text response bodies
const maxMessageLen = 300

// Client is the thin HTTP layer in front of the config server.
// It owns the base URL and timeout and turns responses into either
// decoded payloads or *errors.AppError values. It never retries.
type Client struct {
	rc      *resty.Client
	baseURL string
	log     *logger.Logger
}

// Request describes one POST to the config server
type Request struct {
	Endpoint string
	Token    string
	// Body is sent as JSON. Ignored when Form is set.
	Body any
	// Form switches the request to application/x-www-form-urlencoded
	Form map[string]string
}

// Result is a successful (2xx) response
type Result struct {
	Status  int
	Raw     []byte
	Message string
}

// New creates a client for the configured backend
func New(cfg *config.BackendConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")

	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "confdash")

	return &Client{
		rc:      rc,
		baseURL: baseURL,
		log:     logger.Get().WithFields(logger.Component("configserver")),
	}
}

// BaseURL returns the backend base URL without a trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends req and decodes a JSON response into out when out is non-nil.
// Transport failures of any kind come back as errors.ErrConnection; non-2xx
// responses come back as an AppError carrying the status and the server's message.
func (c *Client) Do(ctx context.Context, req Request, out any) (*Result, error) {
	r := c.rc.R().SetContext(ctx)
	if req.Token != "" {
		r.SetAuthToken(req.Token)
	}
	if req.Form != nil {
		r.SetFormData(req.Form)
	} else {
		body := req.Body
		if body == nil {
			body = struct{}{}
		}
		r.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	start := time.Now()
	resp, err := r.Post(req.Endpoint)
	if err != nil {
		c.log.Warn("Config server unreachable",
			logger.Endpoint(req.Endpoint),
			logger.Error(err),
		)
		return nil, apperrors.Connection(err)
	}

	status := resp.StatusCode()
	raw := resp.Body()

	c.log.Debug("Config server call",
		logger.Endpoint(req.Endpoint),
		logger.StatusCode(status),
		logger.Latency(time.Since(start)),
	)

	if !resp.IsSuccess() {
		return nil, apperrors.FromStatus(status, ErrorMessage(status, raw))
	}

	res := &Result{Status: status, Raw: raw, Message: successMessage(raw)}
	if out != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return nil, apperrors.NewAppError(apperrors.CodeBadGateway,
				fmt.Sprintf("Unexpected response from %s", req.Endpoint), err)
		}
	}
	return res, nil
}

// ErrorMessage extracts a human-readable message from an error response body.
// JSON bodies are searched for message, error, detail and msg; plain text is
// used as is; anything else falls back to the status line.
func ErrorMessage(status int, body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return statusMessage(status)
	}

	var v any
	if err := json.Unmarshal(trimmed, &v); err == nil {
		if msg := messageFrom(v); msg != "" {
			return msg
		}
		return statusMessage(status)
	}

	if trimmed[0] == '<' {
		return statusMessage(status)
	}
	text := string(trimmed)
	if len(text) > maxMessageLen {
		text = text[:maxMessageLen] + "..."
	}
	return text
}

func messageFrom(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		for _, key := range []string{"message", "error", "detail", "msg"} {
			if inner, ok := t[key]; ok {
				if msg := messageFrom(inner); msg != "" {
					return msg
				}
			}
		}
	}
	return ""
}

func successMessage(body []byte) string {
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		return ""
	}
	if msg, ok := obj["message"].(string); ok {
		return strings.TrimSpace(msg)
	}
	return ""
}

func statusMessage(status int) string {
	if text := http.StatusText(status); text != "" {
		return fmt.Sprintf("Request failed with status %d (%s)", status, text)
	}
	return fmt.Sprintf("Request failed with status %d", status)
}
