// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockWebhookPoster implements domain.WebhookPoster for testing
type MockWebhookPoster struct {
	mock.Mock
}

func (m *MockWebhookPoster) Post(ctx context.Context, webhookURL, text string) (int, error) {
	args := m.Called(ctx, webhookURL, text)
	return args.Int(0), args.Error(1)
}
