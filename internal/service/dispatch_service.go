// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/logging"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/query"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/pkg/concurrent"
)

// DispatchService runs the daily notification pipeline.
type DispatchService struct {
	MeetingRepository domain.MeetingRepository
	ChannelRepository domain.ChannelRepository
	Delivery          *DeliveryEngine
	Cleanup           *CleanupCoordinator
	// EventSender and Recorder are optional observers of finished runs.
	EventSender domain.DispatchEventSender
	Recorder    domain.DispatchRecorder
	Config      ServiceConfig
}

// NewDispatchService creates a new DispatchService.
func NewDispatchService(
	meetingRepository domain.MeetingRepository,
	channelRepository domain.ChannelRepository,
	poster domain.WebhookPoster,
	eventSender domain.DispatchEventSender,
	recorder domain.DispatchRecorder,
	config ServiceConfig,
) *DispatchService {
	return &DispatchService{
		MeetingRepository: meetingRepository,
		ChannelRepository: channelRepository,
		Delivery:          NewDeliveryEngine(poster, config),
		Cleanup:           NewCleanupCoordinator(meetingRepository),
		EventSender:       eventSender,
		Recorder:          recorder,
		Config:            config,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *DispatchService) ServiceReady() bool {
	return s.MeetingRepository != nil &&
		s.ChannelRepository != nil &&
		s.Delivery != nil && s.Delivery.Poster != nil &&
		s.Cleanup != nil
}

// Run announces today's meetings to their channels and deletes the meetings
// of every channel whose digest was delivered. A storage error while
// selecting meetings or channels aborts the run before anything is sent.
// Delivery and cleanup failures are reported per group.
func (s *DispatchService) Run(ctx context.Context) (*models.DispatchReport, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "dispatch service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}

	loc := s.Config.location()
	startedAt := s.Config.now()
	today := query.StartOfDay(startedAt, loc)
	day := today.Format(models.DateLayout)

	report := &models.DispatchReport{
		RunID:     uuid.NewString(),
		Day:       day,
		StartedAt: startedAt,
	}

	ctx = logging.AppendCtx(ctx, slog.String("run_id", report.RunID))
	ctx = logging.AppendCtx(ctx, slog.String("day", day))
	ctx, span := otel.Tracer(tracerName).Start(ctx, "dispatch.run")
	span.SetAttributes(
		attribute.String("dispatch.run_id", report.RunID),
		attribute.String("dispatch.day", day),
	)
	defer span.End()

	slog.InfoContext(ctx, "dispatch run started")

	meetings, err := s.MeetingRepository.Find(ctx, query.BuildMeetingPredicate(query.MeetingCriteria{
		FromDate: day,
		ToDate:   day,
	}, loc))
	if err != nil {
		slog.ErrorContext(ctx, "failed to query today's web meetings", logging.ErrKey, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "meeting query failed")
		return nil, fmt.Errorf("query web meetings for %s: %w", day, err)
	}

	digests := ComposeDigests(meetings, today, loc)
	if len(digests) == 0 {
		slog.InfoContext(ctx, "no web meetings to announce today", "meetings", len(meetings))
		return s.finish(ctx, report, models.RunStatusDoneEmpty), nil
	}

	channelIDs := make([]string, len(digests))
	for i, d := range digests {
		channelIDs[i] = d.ChannelID
	}
	channels, err := s.ChannelRepository.Find(ctx, query.BuildChannelPredicate(query.ChannelCriteria{
		IDs: query.JoinIDs(channelIDs),
	}))
	if err != nil {
		slog.ErrorContext(ctx, "failed to resolve slack channels", logging.ErrKey, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "channel query failed")
		return nil, fmt.Errorf("resolve slack channels: %w", err)
	}

	webhooks := make(map[string]string, len(channels))
	for _, c := range channels {
		webhooks[c.ID] = c.WebhookURL
	}
	if missing := unresolvedChannels(channelIDs, channels); len(missing) > 0 {
		span.SetAttributes(attribute.StringSlice("dispatch.unresolved_channels", missing))
		slog.WarnContext(ctx, "digests target unregistered slack channels", "channel_ids", missing)
	}

	pool := concurrent.NewWorkerPool(s.Config.Concurrency)

	span.SetAttributes(attribute.Int("dispatch.groups", len(digests)))
	slog.InfoContext(ctx, "dispatching digests",
		"meetings", len(meetings),
		"groups", len(digests),
		"channels_resolved", len(channels),
		"workers", pool.Size(),
	)

	report.Groups = make([]models.GroupResult, len(digests))
	pool.Each(ctx, len(digests), func(ctx context.Context, i int) {
		report.Groups[i] = s.processGroup(ctx, digests[i], webhooks)
	})
	// Groups skipped because ctx ended still need an identity in the report.
	for i, d := range digests {
		if report.Groups[i].ChannelID == "" {
			report.Groups[i] = models.GroupResult{
				ChannelID:  d.ChannelID,
				Status:     models.GroupStatusFailed,
				MeetingIDs: d.MeetingIDs(),
				Delivery: models.DeliveryOutcome{
					ChannelID: d.ChannelID,
					Error:     "dispatch cancelled before delivery",
				},
			}
		}
	}

	return s.finish(ctx, report, models.RunStatusDone), nil
}

// unresolvedChannels returns, in lexical order, the wanted channel ids that no
// registered channel matched.
func unresolvedChannels(wanted []string, channels []*models.Channel) []string {
	set := query.ParseIDSet(query.JoinIDs(wanted))
	for _, c := range channels {
		delete(set, c.ID)
	}
	if len(set) == 0 {
		return nil
	}
	return set.Sorted()
}

// processGroup delivers one digest and, on success, cleans up its meetings.
func (s *DispatchService) processGroup(ctx context.Context, digest models.Digest, webhooks map[string]string) models.GroupResult {
	ctx = logging.AppendCtx(ctx, slog.String("channel_id", digest.ChannelID))

	result := models.GroupResult{
		ChannelID:  digest.ChannelID,
		MeetingIDs: digest.MeetingIDs(),
	}

	webhookURL, ok := webhooks[digest.ChannelID]
	if !ok || webhookURL == "" {
		slog.WarnContext(ctx, "slack channel is not registered, keeping its web meetings",
			"meetings", len(digest.Meetings))
		result.Status = models.GroupStatusUnresolved
		result.Delivery = models.DeliveryOutcome{ChannelID: digest.ChannelID, Error: "slack channel not found"}
		return result
	}

	result.Delivery = s.Delivery.Deliver(ctx, digest.ChannelID, webhookURL, digest.Text)
	if s.Recorder != nil {
		s.Recorder.RecordDelivery(result.Delivery)
	}
	if !result.Delivery.Delivered {
		result.Status = models.GroupStatusFailed
		return result
	}

	result.Status = models.GroupStatusDelivered
	result.DeletedIDs, result.CleanupFailures = s.Cleanup.Cleanup(ctx, digest.Meetings)
	return result
}

// finish stamps the report and notifies observers. Observer failures never
// change the run result.
func (s *DispatchService) finish(ctx context.Context, report *models.DispatchReport, status models.RunStatus) *models.DispatchReport {
	report.Status = status
	report.FinishedAt = s.Config.now()

	delivered := report.Count(models.GroupStatusDelivered)
	failed := report.Count(models.GroupStatusFailed)
	unresolved := report.Count(models.GroupStatusUnresolved)

	attrs := []any{
		"status", status,
		"delivered", delivered,
		"failed", failed,
		"unresolved", unresolved,
	}
	if failed > 0 && delivered == 0 && unresolved == 0 {
		attrs = append(attrs, logging.PriorityCritical())
		slog.ErrorContext(ctx, "dispatch run finished without a single delivery", attrs...)
	} else {
		slog.InfoContext(ctx, "dispatch run finished", attrs...)
	}

	if s.Recorder != nil {
		s.Recorder.RecordRun(report)
	}
	if s.EventSender != nil {
		if err := s.EventSender.SendDispatchCompleted(ctx, models.NewDispatchCompletedMessage(report)); err != nil {
			slog.WarnContext(ctx, "failed to publish dispatch completed event", logging.ErrKey, err)
		}
	}

	return report
}
