// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"log/slog"

	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/query"
)

// NatsMeetingRepository is the NATS KV store repository for web meetings.
type NatsMeetingRepository struct {
	base *NatsBaseRepository[models.Meeting]
	keys *KeyBuilder
}

// Ensure that NatsMeetingRepository implements domain.MeetingRepository
var _ domain.MeetingRepository = (*NatsMeetingRepository)(nil)

// NewNatsMeetingRepository creates a new NATS KV store repository for web meetings.
func NewNatsMeetingRepository(meetings INatsKeyValue) *NatsMeetingRepository {
	return &NatsMeetingRepository{
		base: NewNatsBaseRepository[models.Meeting](meetings, "web meeting"),
		keys: NewKeyBuilder(""),
	}
}

// IsReady reports whether the backing bucket is bound.
func (r *NatsMeetingRepository) IsReady() bool {
	return r.base.IsReady()
}

// Find returns every meeting matching the predicate.
func (r *NatsMeetingRepository) Find(ctx context.Context, predicate query.Predicate[models.Meeting]) ([]*models.Meeting, error) {
	return r.base.Find(ctx, r.keys.IsMeetingKey, predicate)
}

// Get looks the meeting up by id across all date partitions.
func (r *NatsMeetingRepository) Get(ctx context.Context, id string) (*models.Meeting, error) {
	keys, err := r.base.ListKeys(ctx)
	if err != nil {
		return nil, err
	}

	for _, key := range keys {
		_, keyID, ok := r.keys.ParseMeetingKey(key)
		if !ok || keyID != id {
			continue
		}
		meeting, err := r.base.Get(ctx, key)
		if err != nil {
			if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
				break
			}
			return nil, err
		}
		return meeting, nil
	}

	slog.DebugContext(ctx, "web meeting not found", "id", id)
	return nil, domain.ErrMeetingNotFound
}

// Create stores the meeting under its partition key. The meeting must have
// been normalized.
func (r *NatsMeetingRepository) Create(ctx context.Context, meeting *models.Meeting) error {
	if meeting.ID == "" || meeting.PartitionKey() == "" {
		return domain.NewValidationError("web meeting id and date are required")
	}
	return r.base.Put(ctx, r.keys.MeetingKey(meeting.PartitionKey(), meeting.ID), meeting)
}

// Delete removes the meeting addressed by id and partition key.
func (r *NatsMeetingRepository) Delete(ctx context.Context, id, partitionKey string) error {
	return r.base.Delete(ctx, r.keys.MeetingKey(partitionKey, id))
}
