// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/query"
)

// MockMeetingRepository implements domain.MeetingRepository for testing
type MockMeetingRepository struct {
	mock.Mock
}

func (m *MockMeetingRepository) Find(ctx context.Context, predicate query.Predicate[models.Meeting]) ([]*models.Meeting, error) {
	args := m.Called(ctx, predicate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Meeting), args.Error(1)
}

func (m *MockMeetingRepository) Get(ctx context.Context, id string) (*models.Meeting, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Meeting), args.Error(1)
}

func (m *MockMeetingRepository) Create(ctx context.Context, meeting *models.Meeting) error {
	args := m.Called(ctx, meeting)
	return args.Error(0)
}

func (m *MockMeetingRepository) Delete(ctx context.Context, id, partitionKey string) error {
	args := m.Called(ctx, id, partitionKey)
	return args.Error(0)
}

// NewMockMeetingRepository creates a new mock meeting repository
func NewMockMeetingRepository() *MockMeetingRepository {
	return &MockMeetingRepository{}
}
