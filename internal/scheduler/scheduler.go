// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package scheduler fires dispatch runs on an RFC 5545 recurrence rule and
// serializes them with on-demand runs.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/logging"
)

// DefaultSchedule fires at 09:00 on weekdays.
const DefaultSchedule = "FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR;BYHOUR=9;BYMINUTE=0;BYSECOND=0"

// ErrStopped is returned by Trigger once the scheduler loop has exited.
var ErrStopped = errors.New("scheduler stopped")

// Runner performs one dispatch run.
type Runner interface {
	Run(ctx context.Context) (*models.DispatchReport, error)
}

type runResult struct {
	report *models.DispatchReport
	err    error
}

type trigger struct {
	ctx   context.Context
	reply chan runResult
}

// Scheduler owns the single goroutine that executes dispatch runs.
type Scheduler struct {
	runner   Runner
	rule     *rrule.RRule
	clock    func() time.Time
	triggers chan trigger
	done     chan struct{}
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) Option {
	return func(s *Scheduler) { s.clock = clock }
}

// ParseSchedule builds the recurrence from an RRULE string. Occurrences are
// computed in loc, starting at midnight of the day of now.
func ParseSchedule(schedule string, now time.Time, loc *time.Location) (*rrule.RRule, error) {
	if loc == nil {
		loc = time.UTC
	}
	if schedule == "" {
		schedule = DefaultSchedule
	}

	opt, err := rrule.StrToROption(schedule)
	if err != nil {
		return nil, fmt.Errorf("invalid dispatch schedule %q: %w", schedule, err)
	}

	local := now.In(loc)
	opt.Dtstart = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	rule, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("invalid dispatch schedule %q: %w", schedule, err)
	}
	return rule, nil
}

// New creates a scheduler for runner. The loop starts with Run.
func New(runner Runner, schedule string, loc *time.Location, opts ...Option) (*Scheduler, error) {
	s := &Scheduler{
		runner:   runner,
		clock:    time.Now,
		triggers: make(chan trigger),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	rule, err := ParseSchedule(schedule, s.clock(), loc)
	if err != nil {
		return nil, err
	}
	s.rule = rule
	return s, nil
}

// Next returns the first scheduled run strictly after t, or the zero time
// when the rule has no further occurrences.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.rule.After(t, false)
}

// Run executes scheduled and triggered runs one at a time until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	defer close(s.done)

	for {
		now := s.clock()
		next := s.Next(now)

		var (
			timer  *time.Timer
			timerC <-chan time.Time
		)
		if next.IsZero() {
			slog.WarnContext(ctx, "dispatch schedule has no further occurrences")
		} else {
			slog.DebugContext(ctx, "next dispatch run scheduled", "next_run", next.Format(time.RFC3339))
			timer = time.NewTimer(next.Sub(now))
			timerC = timer.C
		}

		select {
		case <-ctx.Done():
			stopTimer(timer)
			slog.InfoContext(ctx, "scheduler stopped")
			return
		case <-timerC:
			s.dispatch(ctx, "schedule")
		case t := <-s.triggers:
			stopTimer(timer)
			report, err := s.dispatch(t.ctx, "trigger")
			t.reply <- runResult{report: report, err: err}
		}
	}
}

// Trigger requests an immediate run and waits for its report. The run is
// queued behind any run already in progress.
func (s *Scheduler) Trigger(ctx context.Context) (*models.DispatchReport, error) {
	t := trigger{ctx: ctx, reply: make(chan runResult, 1)}

	select {
	case s.triggers <- t:
	case <-s.done:
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-t.reply:
		return res.report, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Scheduler) dispatch(ctx context.Context, source string) (*models.DispatchReport, error) {
	ctx = logging.AppendCtx(ctx, slog.String("dispatch_source", source))

	report, err := s.runner.Run(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "dispatch run failed", logging.ErrKey, err, logging.PriorityCritical())
		return nil, err
	}
	return report, nil
}

func stopTimer(t *time.Timer) {
	if t != nil {
		t.Stop()
	}
}
