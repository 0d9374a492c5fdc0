// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/logging"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/query"
)

// ChannelsService registers, queries and removes Slack channels.
type ChannelsService struct {
	ChannelRepository domain.ChannelRepository
	Config            ServiceConfig
}

// NewChannelsService creates a new ChannelsService.
func NewChannelsService(channelRepository domain.ChannelRepository, config ServiceConfig) *ChannelsService {
	return &ChannelsService{
		ChannelRepository: channelRepository,
		Config:            config,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *ChannelsService) ServiceReady() bool {
	return s.ChannelRepository != nil
}

func (s *ChannelsService) CreateChannel(ctx context.Context, channel *models.Channel) (*models.Channel, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "channels service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}

	if err := ValidateChannel(channel); err != nil {
		slog.WarnContext(ctx, "invalid slack channel", logging.ErrKey, err)
		return nil, err
	}

	channel.ID = uuid.NewString()
	channel.RegisteredAt = s.Config.now().UTC().Truncate(time.Millisecond)

	ctx = logging.AppendCtx(ctx, slog.String("channel_id", channel.ID))

	if err := s.ChannelRepository.Create(ctx, channel); err != nil {
		slog.ErrorContext(ctx, "error creating slack channel", logging.ErrKey, err)
		return nil, err
	}

	slog.InfoContext(ctx, "created slack channel", "name", channel.Name)
	return channel, nil
}

func (s *ChannelsService) GetChannel(ctx context.Context, id string) (*models.Channel, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "channels service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}
	if id == "" {
		return nil, domain.NewValidationError("id is null or empty", domain.ErrValidationFailed)
	}

	channel, err := s.ChannelRepository.Get(ctx, id)
	if err != nil {
		slog.WarnContext(ctx, "error getting slack channel", "channel_id", id, logging.ErrKey, err)
		return nil, err
	}
	return channel, nil
}

func (s *ChannelsService) QueryChannels(ctx context.Context, criteria query.ChannelCriteria) ([]*models.Channel, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "channels service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}

	channels, err := s.ChannelRepository.Find(ctx, query.BuildChannelPredicate(criteria))
	if err != nil {
		slog.ErrorContext(ctx, "error querying slack channels", logging.ErrKey, err)
		return nil, err
	}
	return channels, nil
}

// DeleteChannel removes a registered channel. Meetings pointing at it are
// kept and reported as unresolved by later dispatch runs.
func (s *ChannelsService) DeleteChannel(ctx context.Context, id string) error {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "channels service not initialized", logging.PriorityCritical())
		return domain.ErrServiceUnavailable
	}

	// Surfaces ErrChannelNotFound; the repository delete itself is idempotent.
	if _, err := s.GetChannel(ctx, id); err != nil {
		return err
	}

	if err := s.ChannelRepository.Delete(ctx, id); err != nil {
		slog.ErrorContext(ctx, "error deleting slack channel", "channel_id", id, logging.ErrKey, err)
		return err
	}

	slog.InfoContext(ctx, "deleted slack channel", "channel_id", id)
	return nil
}
