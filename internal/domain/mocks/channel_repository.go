// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/query"
)

// MockChannelRepository implements domain.ChannelRepository for testing
type MockChannelRepository struct {
	mock.Mock
}

func (m *MockChannelRepository) Find(ctx context.Context, predicate query.Predicate[models.Channel]) ([]*models.Channel, error) {
	args := m.Called(ctx, predicate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Channel), args.Error(1)
}

func (m *MockChannelRepository) Get(ctx context.Context, id string) (*models.Channel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Channel), args.Error(1)
}

func (m *MockChannelRepository) Create(ctx context.Context, channel *models.Channel) error {
	args := m.Called(ctx, channel)
	return args.Error(0)
}

func (m *MockChannelRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// NewMockChannelRepository creates a new mock channel repository
func NewMockChannelRepository() *MockChannelRepository {
	return &MockChannelRepository{}
}
