// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain/models"
)

// WebhookPoster performs a single delivery attempt to an incoming webhook.
// The returned error is set only when no HTTP response was received.
type WebhookPoster interface {
	Post(ctx context.Context, webhookURL, text string) (int, error)
}

// DispatchRecorder observes dispatch runs, typically for metrics.
type DispatchRecorder interface {
	RecordDelivery(outcome models.DeliveryOutcome)
	RecordRun(report *models.DispatchReport)
}
