// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/query"
)

// MeetingRepository defines the interface for web meeting storage operations.
type MeetingRepository interface {
	// Find returns every stored meeting matching the predicate.
	Find(ctx context.Context, predicate query.Predicate[models.Meeting]) ([]*models.Meeting, error)
	// Get returns the meeting with the given id or ErrMeetingNotFound.
	Get(ctx context.Context, id string) (*models.Meeting, error)
	Create(ctx context.Context, meeting *models.Meeting) error
	// Delete removes a meeting by id and stored partition key. Deleting a
	// missing meeting is not an error.
	Delete(ctx context.Context, id, partitionKey string) error
}

// ChannelRepository defines the interface for Slack channel storage operations.
type ChannelRepository interface {
	Find(ctx context.Context, predicate query.Predicate[models.Channel]) ([]*models.Channel, error)
	// Get returns the channel with the given id or ErrChannelNotFound.
	Get(ctx context.Context, id string) (*models.Channel, error)
	Create(ctx context.Context, channel *models.Channel) error
	Delete(ctx context.Context, id string) error
}
