// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain/models"
)

type fakeRunner struct {
	mu      sync.Mutex
	calls   int
	active  int32
	maxSeen int32
	delay   time.Duration
	err     error
	ran     chan struct{}
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{ran: make(chan struct{}, 16)}
}

func (r *fakeRunner) Run(ctx context.Context) (*models.DispatchReport, error) {
	n := atomic.AddInt32(&r.active, 1)
	defer atomic.AddInt32(&r.active, -1)
	for {
		seen := atomic.LoadInt32(&r.maxSeen)
		if n <= seen || atomic.CompareAndSwapInt32(&r.maxSeen, seen, n) {
			break
		}
	}

	time.Sleep(r.delay)

	r.mu.Lock()
	r.calls++
	calls := r.calls
	r.mu.Unlock()

	select {
	case r.ran <- struct{}{}:
	default:
	}

	if r.err != nil {
		return nil, r.err
	}
	return &models.DispatchReport{RunID: fmt.Sprintf("run-%d", calls), Status: models.RunStatusDone}, nil
}

func TestParseSchedule_DefaultSkipsWeekend(t *testing.T) {
	// Friday 2026-10-16 10:00, after the Friday run.
	now := time.Date(2026, time.October, 16, 10, 0, 0, 0, time.UTC)

	rule, err := ParseSchedule("", now, time.UTC)
	require.NoError(t, err)

	next := rule.After(now, false)
	assert.Equal(t, time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC), next)
	assert.Equal(t, time.Monday, next.Weekday())
}

func TestScheduler_Next(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "before today's run",
			now:  time.Date(2026, time.October, 14, 8, 59, 0, 0, time.UTC),
			want: time.Date(2026, time.October, 14, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "exactly at today's run",
			now:  time.Date(2026, time.October, 14, 9, 0, 0, 0, time.UTC),
			want: time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "saturday",
			now:  time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC),
			want: time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(newFakeRunner(), DefaultSchedule, time.UTC, WithClock(func() time.Time { return tt.now }))
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Next(tt.now))
		})
	}
}

func TestScheduler_NextInLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	now := time.Date(2026, time.October, 16, 1, 0, 0, 0, tokyo)

	s, err := New(newFakeRunner(), DefaultSchedule, tokyo, WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	next := s.Next(now)
	assert.True(t, next.Equal(time.Date(2026, time.October, 16, 0, 0, 0, 0, time.UTC)))
}

func TestNew_InvalidSchedule(t *testing.T) {
	_, err := New(newFakeRunner(), "FREQ=SOMETIMES", time.UTC)
	assert.ErrorContains(t, err, "invalid dispatch schedule")
}

func TestScheduler_Trigger(t *testing.T) {
	runner := newFakeRunner()
	s, err := New(runner, DefaultSchedule, time.UTC)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go s.Run(ctx)

	report, err := s.Trigger(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusDone, report.Status)

	cancel()
	<-s.done

	_, err = s.Trigger(context.Background())
	assert.ErrorIs(t, err, ErrStopped)
}

func TestScheduler_TriggerPropagatesRunError(t *testing.T) {
	runner := newFakeRunner()
	runner.err = errors.New("kv unavailable")
	s, err := New(runner, DefaultSchedule, time.UTC)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	report, err := s.Trigger(context.Background())
	assert.Nil(t, report)
	assert.EqualError(t, err, "kv unavailable")
}

func TestScheduler_RunsAreSerialized(t *testing.T) {
	runner := newFakeRunner()
	runner.delay = 20 * time.Millisecond
	s, err := New(runner, DefaultSchedule, time.UTC)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Trigger(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 4, runner.calls)
	assert.Equal(t, int32(1), atomic.LoadInt32(&runner.maxSeen))
}

func TestScheduler_FiresOnSchedule(t *testing.T) {
	var mu sync.Mutex
	now := time.Date(2026, time.October, 16, 8, 59, 59, 950_000_000, time.UTC)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	runner := newFakeRunner()
	s, err := New(runner, DefaultSchedule, time.UTC, WithClock(clock))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	select {
	case <-runner.ran:
		mu.Lock()
		now = now.Add(time.Minute)
		mu.Unlock()
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled run did not fire")
	}

	cancel()
	<-s.done
}

func TestScheduler_TriggerContextCancelled(t *testing.T) {
	s, err := New(newFakeRunner(), DefaultSchedule, time.UTC)
	require.NoError(t, err)

	// The loop is not running, so the request cannot be accepted.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = s.Trigger(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
