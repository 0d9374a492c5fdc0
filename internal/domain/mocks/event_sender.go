// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain/models"
)

// MockDispatchEventSender implements domain.DispatchEventSender for testing
type MockDispatchEventSender struct {
	mock.Mock
}

func (m *MockDispatchEventSender) SendDispatchCompleted(ctx context.Context, data models.DispatchCompletedMessage) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

// MockDispatchRecorder implements domain.DispatchRecorder for testing
type MockDispatchRecorder struct {
	mock.Mock
}

func (m *MockDispatchRecorder) RecordDelivery(outcome models.DeliveryOutcome) {
	m.Called(outcome)
}

func (m *MockDispatchRecorder) RecordRun(report *models.DispatchReport) {
	m.Called(report)
}
