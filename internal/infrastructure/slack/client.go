// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/logging"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/pkg/retry"
)

const (
	// DefaultClientTimeout is the default timeout of a single webhook request
	DefaultClientTimeout = 30 * time.Second

	// maxErrorBodyBytes bounds how much of an error response is kept for logging
	maxErrorBodyBytes = 512
)

// Config holds the configuration for the webhook client
type Config struct {
	// Optional: override timeout for HTTP requests
	Timeout time.Duration
	// Optional: override the transport, mostly for tests
	Transport http.RoundTripper
}

// message is the incoming webhook payload
type message struct {
	Text string `json:"text"`
}

// WebhookClient posts plain-text messages to Slack incoming webhooks.
// It performs exactly one request per call; retries belong to the caller.
type WebhookClient struct {
	httpClient *http.Client
	config     Config
}

// Ensure that WebhookClient implements domain.WebhookPoster
var _ domain.WebhookPoster = (*WebhookClient)(nil)

// NewWebhookClient creates a new webhook client
func NewWebhookClient(config Config) *WebhookClient {
	if config.Timeout == 0 {
		config.Timeout = DefaultClientTimeout
	}
	base := config.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	return &WebhookClient{
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: otelhttp.NewTransport(base),
		},
		config: config,
	}
}

// Post sends text to the webhook and returns the response status code.
// A non-nil error means no HTTP response was received. Errors that another
// attempt cannot fix, such as a malformed URL or an unsupported scheme, are
// marked with retry.Permanent.
func (c *WebhookClient) Post(ctx context.Context, webhookURL, text string) (int, error) {
	body, err := json.Marshal(message{Text: text})
	if err != nil {
		return 0, retry.Permanent(fmt.Errorf("failed to marshal webhook message: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return 0, retry.Permanent(fmt.Errorf("failed to create webhook request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)
	if err != nil {
		slog.WarnContext(ctx, "webhook request failed",
			logging.ErrKey, err,
			"duration", duration.String(),
		)
		return 0, classifyTransportError(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		slog.WarnContext(ctx, "webhook rejected message",
			"status", resp.StatusCode,
			"response_body", string(errBody),
			"duration", duration.String(),
		)
		return resp.StatusCode, nil
	}

	// Drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)

	slog.DebugContext(ctx, "webhook request completed",
		"status", resp.StatusCode,
		"duration", duration.String(),
	)
	return resp.StatusCode, nil
}

// classifyTransportError keeps network failures retryable and marks
// everything else returned by the HTTP client as permanent.
func classifyTransportError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return err
	}

	cause := err
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		cause = urlErr.Err
	}
	var netErr net.Error
	if errors.As(cause, &netErr) {
		return err
	}
	return retry.Permanent(err)
}
