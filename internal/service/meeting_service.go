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

// MeetingsService registers and queries web meetings.
type MeetingsService struct {
	MeetingRepository domain.MeetingRepository
	Config            ServiceConfig
}

// NewMeetingsService creates a new MeetingsService.
func NewMeetingsService(meetingRepository domain.MeetingRepository, config ServiceConfig) *MeetingsService {
	return &MeetingsService{
		MeetingRepository: meetingRepository,
		Config:            config,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *MeetingsService) ServiceReady() bool {
	return s.MeetingRepository != nil
}

// CreateMeeting validates and stores a new web meeting. The id, registration
// time and normalized date are assigned here, never taken from the caller.
func (s *MeetingsService) CreateMeeting(ctx context.Context, meeting *models.Meeting) (*models.Meeting, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "meetings service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}

	loc := s.Config.location()
	if err := ValidateMeeting(meeting, s.Config.now(), loc); err != nil {
		slog.WarnContext(ctx, "invalid web meeting", logging.ErrKey, err)
		return nil, err
	}

	meeting.ID = uuid.NewString()
	meeting.RegisteredAt = s.Config.now().UTC().Truncate(time.Millisecond)
	meeting.Normalize(loc)

	ctx = logging.AppendCtx(ctx, slog.String("meeting_id", meeting.ID))

	if err := s.MeetingRepository.Create(ctx, meeting); err != nil {
		slog.ErrorContext(ctx, "error creating web meeting", logging.ErrKey, err)
		return nil, err
	}

	slog.InfoContext(ctx, "created web meeting",
		"date", meeting.Date,
		"slack_channel_id", meeting.SlackChannelID,
	)
	return meeting, nil
}

// GetMeeting returns one web meeting.
func (s *MeetingsService) GetMeeting(ctx context.Context, id string) (*models.Meeting, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "meetings service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}
	if id == "" {
		return nil, domain.NewValidationError("id is null or empty", domain.ErrValidationFailed)
	}

	meeting, err := s.MeetingRepository.Get(ctx, id)
	if err != nil {
		slog.WarnContext(ctx, "error getting web meeting", "meeting_id", id, logging.ErrKey, err)
		return nil, err
	}
	return meeting, nil
}

// QueryMeetings returns the web meetings matching the criteria.
func (s *MeetingsService) QueryMeetings(ctx context.Context, criteria query.MeetingCriteria) ([]*models.Meeting, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "meetings service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}

	loc := s.Config.location()
	if err := ValidateMeetingCriteria(criteria, loc); err != nil {
		return nil, err
	}

	meetings, err := s.MeetingRepository.Find(ctx, query.BuildMeetingPredicate(criteria, loc))
	if err != nil {
		slog.ErrorContext(ctx, "error querying web meetings", logging.ErrKey, err)
		return nil, err
	}

	slog.DebugContext(ctx, "queried web meetings", "count", len(meetings))
	return meetings, nil
}
