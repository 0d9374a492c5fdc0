// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package retry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSleeper struct {
	waits []time.Duration
}

func (r *recordingSleeper) sleep(_ context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return nil
}

var defaultSchedule = []time.Duration{
	2 * time.Second,
	4 * time.Second,
	8 * time.Second,
	16 * time.Second,
	32 * time.Second,
	64 * time.Second,
}

func TestSchedule_Default(t *testing.T) {
	assert.Equal(t, defaultSchedule, Schedule(DefaultRetries, DefaultBaseDelay, DefaultMultiplier))
}

func TestDo_AlwaysServiceUnavailable(t *testing.T) {
	sleeper := &recordingSleeper{}
	calls := 0

	res := Do(context.Background(), func(context.Context) (int, error) {
		calls++
		return http.StatusServiceUnavailable, nil
	}, WithSleeper(sleeper.sleep))

	assert.Equal(t, 7, calls)
	assert.Equal(t, defaultSchedule, sleeper.waits)
	assert.False(t, res.Success)
	assert.Equal(t, 7, res.Attempts)
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	sleeper := &recordingSleeper{}
	statuses := []int{http.StatusTooManyRequests, http.StatusBadGateway, http.StatusOK}
	calls := 0

	res := Do(context.Background(), func(context.Context) (int, error) {
		s := statuses[calls]
		calls++
		return s, nil
	}, WithSleeper(sleeper.sleep))

	assert.True(t, res.Success)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, defaultSchedule[:2], sleeper.waits)
}

func TestDo_TerminalStatusIsNotRetried(t *testing.T) {
	sleeper := &recordingSleeper{}
	calls := 0

	res := Do(context.Background(), func(context.Context) (int, error) {
		calls++
		return http.StatusNotFound, nil
	}, WithSleeper(sleeper.sleep))

	assert.Equal(t, 1, calls)
	assert.Empty(t, sleeper.waits)
	assert.False(t, res.Success)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestDo_NonOKSuccessStatusIsTerminal(t *testing.T) {
	res := Do(context.Background(), func(context.Context) (int, error) {
		return http.StatusNoContent, nil
	}, WithSleeper((&recordingSleeper{}).sleep))

	assert.False(t, res.Success)
	assert.Equal(t, 1, res.Attempts)
}

func TestDo_TransportErrorRetried(t *testing.T) {
	sleeper := &recordingSleeper{}
	transportErr := errors.New("connection reset by peer")

	res := Do(context.Background(), func(context.Context) (int, error) {
		return 0, transportErr
	}, WithSleeper(sleeper.sleep), WithRetries(2), WithBaseDelay(time.Millisecond))

	assert.Equal(t, 3, res.Attempts)
	assert.ErrorIs(t, res.Err, transportErr)
	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond}, sleeper.waits)
}

func TestDo_PermanentErrorNotRetried(t *testing.T) {
	sleeper := &recordingSleeper{}
	cause := errors.New(`unsupported protocol scheme "ftp"`)

	res := Do(context.Background(), func(context.Context) (int, error) {
		return 0, Permanent(cause)
	}, WithSleeper(sleeper.sleep))

	assert.Equal(t, 1, res.Attempts)
	assert.Empty(t, sleeper.waits)
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, cause)
}

func TestDo_CancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	res := Do(ctx, func(context.Context) (int, error) {
		calls++
		return http.StatusInternalServerError, nil
	}, WithSleeper(func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}))

	assert.Equal(t, 1, calls)
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, context.Canceled)
}

func TestDo_OnRetryHook(t *testing.T) {
	var attempts []int
	Do(context.Background(), func(context.Context) (int, error) {
		return http.StatusInternalServerError, nil
	},
		WithRetries(2),
		WithSleeper((&recordingSleeper{}).sleep),
		WithOnRetry(func(attempt int, _ int, _ error, _ time.Duration) { attempts = append(attempts, attempt) }),
	)

	assert.Equal(t, []int{1, 2}, attempts)
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		err      error
		expected bool
	}{
		{"transport error", 0, errors.New("dial tcp: refused"), true},
		{"context cancelled", 0, context.Canceled, false},
		{"permanent error", 0, Permanent(errors.New("unsupported protocol scheme")), false},
		{"wrapped permanent error", 0, fmt.Errorf("post: %w", Permanent(errors.New("bad url"))), false},
		{"deadline exceeded", 0, context.DeadlineExceeded, false},
		{"500", http.StatusInternalServerError, nil, true},
		{"503", http.StatusServiceUnavailable, nil, true},
		{"408", http.StatusRequestTimeout, nil, true},
		{"429", http.StatusTooManyRequests, nil, true},
		{"400", http.StatusBadRequest, nil, false},
		{"403", http.StatusForbidden, nil, false},
		{"404", http.StatusNotFound, nil, false},
		{"200", http.StatusOK, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsTransient(tt.status, tt.err))
		})
	}
}

func TestSleep_HonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Sleep(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, Sleep(context.Background(), time.Millisecond))
}
