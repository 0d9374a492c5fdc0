// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/query"
)

// NatsChannelRepository is the NATS KV store repository for Slack channels.
type NatsChannelRepository struct {
	base *NatsBaseRepository[models.Channel]
	keys *KeyBuilder
}

// Ensure that NatsChannelRepository implements domain.ChannelRepository
var _ domain.ChannelRepository = (*NatsChannelRepository)(nil)

// NewNatsChannelRepository creates a new NATS KV store repository for Slack channels.
func NewNatsChannelRepository(channels INatsKeyValue) *NatsChannelRepository {
	return &NatsChannelRepository{
		base: NewNatsBaseRepository[models.Channel](channels, "slack channel"),
		keys: NewKeyBuilder(""),
	}
}

// IsReady reports whether the backing bucket is bound.
func (r *NatsChannelRepository) IsReady() bool {
	return r.base.IsReady()
}

func (r *NatsChannelRepository) Find(ctx context.Context, predicate query.Predicate[models.Channel]) ([]*models.Channel, error) {
	return r.base.Find(ctx, r.keys.IsChannelKey, predicate)
}

func (r *NatsChannelRepository) Get(ctx context.Context, id string) (*models.Channel, error) {
	channel, err := r.base.Get(ctx, r.keys.ChannelKey(id))
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			return nil, domain.ErrChannelNotFound
		}
		return nil, err
	}
	return channel, nil
}

func (r *NatsChannelRepository) Create(ctx context.Context, channel *models.Channel) error {
	if channel.ID == "" {
		return domain.NewValidationError("slack channel id is required")
	}
	return r.base.Put(ctx, r.keys.ChannelKey(channel.PartitionKey()), channel)
}

func (r *NatsChannelRepository) Delete(ctx context.Context, id string) error {
	return r.base.Delete(ctx, r.keys.ChannelKey(id))
}
