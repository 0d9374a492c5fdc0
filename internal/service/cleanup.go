// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/logging"
)

// CleanupCoordinator deletes the meetings of delivered digests.
type CleanupCoordinator struct {
	MeetingRepository domain.MeetingRepository
}

// NewCleanupCoordinator creates a new CleanupCoordinator.
func NewCleanupCoordinator(meetingRepository domain.MeetingRepository) *CleanupCoordinator {
	return &CleanupCoordinator{MeetingRepository: meetingRepository}
}

// Cleanup deletes every meeting by id and the partition key stored on it.
// A failed deletion is recorded and the remaining ones still run.
func (c *CleanupCoordinator) Cleanup(ctx context.Context, meetings []*models.Meeting) (deleted []string, failures []string) {
	for _, m := range meetings {
		err := c.MeetingRepository.Delete(ctx, m.ID, m.PartitionKey())
		if err != nil && domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			slog.DebugContext(ctx, "web meeting already deleted", "meeting_id", m.ID)
			err = nil
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to delete delivered web meeting",
				"meeting_id", m.ID,
				"partition_key", m.PartitionKey(),
				logging.ErrKey, err,
			)
			failures = append(failures, fmt.Sprintf("%s: %v", m.ID, err))
			continue
		}
		deleted = append(deleted, m.ID)
	}
	return deleted, failures
}
