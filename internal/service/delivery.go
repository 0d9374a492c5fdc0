// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/logging"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/pkg/retry"
)

const tracerName = "github.com/linuxfoundation/lfx-v2-slack-notifier/internal/service"

// DeliveryEngine posts digests to webhooks with bounded retries.
type DeliveryEngine struct {
	Poster    domain.WebhookPoster
	Retries   int
	BaseDelay time.Duration
	// Sleeper waits between attempts; retry.Sleep when nil.
	Sleeper retry.Sleeper
}

// NewDeliveryEngine creates a delivery engine using the retry policy of config.
func NewDeliveryEngine(poster domain.WebhookPoster, config ServiceConfig) *DeliveryEngine {
	return &DeliveryEngine{
		Poster:    poster,
		Retries:   config.RetryAttempts,
		BaseDelay: config.RetryBaseDelay,
	}
}

// Deliver posts text to the channel's webhook. Failures are reported in the
// outcome, never as an error.
func (e *DeliveryEngine) Deliver(ctx context.Context, channelID, webhookURL, text string) models.DeliveryOutcome {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "slack.deliver")
	span.SetAttributes(attribute.String("slack.channel_id", channelID))
	defer span.End()

	opts := []retry.Option{
		retry.WithRetries(e.Retries),
		retry.WithBaseDelay(e.BaseDelay),
		retry.WithClassifier(retry.IsTransient),
		retry.WithSuccess(retry.IsOK),
		retry.WithOnRetry(func(attempt int, statusCode int, err error, wait time.Duration) {
			slog.WarnContext(ctx, "webhook delivery failed, retrying",
				"channel_id", channelID,
				"attempt", attempt,
				"status", statusCode,
				logging.ErrKey, err,
				"wait", wait.String(),
			)
		}),
	}
	if e.Sleeper != nil {
		opts = append(opts, retry.WithSleeper(e.Sleeper))
	}

	res := retry.Do(ctx, func(ctx context.Context) (int, error) {
		return e.Poster.Post(ctx, webhookURL, text)
	}, opts...)

	outcome := models.DeliveryOutcome{
		ChannelID:  channelID,
		Delivered:  res.Success,
		StatusCode: res.StatusCode,
		Attempts:   res.Attempts,
	}
	span.SetAttributes(
		attribute.Int("slack.attempts", res.Attempts),
		attribute.Int("http.response.status_code", res.StatusCode),
	)

	if res.Success {
		span.SetStatus(codes.Ok, "")
		slog.InfoContext(ctx, "digest delivered",
			"channel_id", channelID,
			"attempts", res.Attempts,
		)
		return outcome
	}

	switch {
	case res.Err != nil:
		outcome.Error = res.Err.Error()
	case res.StatusCode != 0:
		outcome.Error = fmt.Sprintf("webhook responded %d %s", res.StatusCode, http.StatusText(res.StatusCode))
	default:
		outcome.Error = "webhook delivery failed"
	}
	span.SetStatus(codes.Error, outcome.Error)
	slog.ErrorContext(ctx, "digest delivery failed",
		"channel_id", channelID,
		"attempts", res.Attempts,
		"status", res.StatusCode,
		logging.ErrKey, outcome.Error,
	)
	return outcome
}
