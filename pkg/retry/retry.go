// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package retry re-runs an HTTP-style operation on a fixed exponential
// schedule. It knows nothing about the network layer: an attempt reports a
// status code and an error, and a Classifier decides whether to go again.
package retry

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Default policy: six retries after the first attempt, waiting 2s, 4s, 8s,
// 16s, 32s and 64s.
const (
	DefaultRetries    = 6
	DefaultBaseDelay  = 2 * time.Second
	DefaultMultiplier = 2.0
)

// Attempt performs one try and reports the resulting status code and error.
type Attempt func(ctx context.Context) (int, error)

// Classifier reports whether an attempt outcome may be retried.
type Classifier func(statusCode int, err error) bool

// Succeeded reports whether an attempt outcome is final success.
type Succeeded func(statusCode int, err error) bool

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Result describes the last attempt of a retried operation.
type Result struct {
	StatusCode int
	Attempts   int
	Err        error
	Success    bool
}

type options struct {
	retries    int
	baseDelay  time.Duration
	multiplier float64
	classifier Classifier
	succeeded  Succeeded
	sleeper    Sleeper
	onRetry    func(attempt int, statusCode int, err error, wait time.Duration)
}

// Option customizes Do.
type Option func(*options)

// WithRetries sets the number of retries after the first attempt.
func WithRetries(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.retries = n
		}
	}
}

// WithBaseDelay sets the wait before the first retry.
func WithBaseDelay(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.baseDelay = d
		}
	}
}

// WithClassifier replaces IsTransient.
func WithClassifier(c Classifier) Option {
	return func(o *options) { o.classifier = c }
}

// WithSuccess replaces IsOK.
func WithSuccess(s Succeeded) Option {
	return func(o *options) { o.succeeded = s }
}

// WithSleeper replaces the context-aware timer sleep.
func WithSleeper(s Sleeper) Option {
	return func(o *options) { o.sleeper = s }
}

// WithOnRetry registers a hook called before each wait.
func WithOnRetry(fn func(attempt int, statusCode int, err error, wait time.Duration)) Option {
	return func(o *options) { o.onRetry = fn }
}

// IsOK treats HTTP 200 without a transport error as success.
func IsOK(statusCode int, err error) bool {
	return err == nil && statusCode == http.StatusOK
}

// Permanent marks err as terminal: IsTransient never retries it.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var permanent *backoff.PermanentError
	return errors.As(err, &permanent)
}

// IsTransient classifies transport errors, 5xx, 408 and 429 as retryable.
// Context cancellation and errors marked with Permanent are never retried.
func IsTransient(statusCode int, err error) bool {
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false
		}
		return !IsPermanent(err)
	}

	switch {
	case statusCode >= http.StatusInternalServerError && statusCode < 600:
		return true
	case statusCode == http.StatusRequestTimeout, statusCode == http.StatusTooManyRequests:
		return true
	}
	return false
}

// Sleep waits for d, returning early with ctx.Err() when ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Schedule returns the waits between attempts for the given policy.
func Schedule(retries int, base time.Duration, multiplier float64) []time.Duration {
	b := newBackOff(base, multiplier)
	waits := make([]time.Duration, 0, retries)
	for range retries {
		waits = append(waits, b.NextBackOff())
	}
	return waits
}

func newBackOff(base time.Duration, multiplier float64) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = base
	b.Multiplier = multiplier
	b.RandomizationFactor = 0
	b.MaxInterval = time.Duration(math.MaxInt64)
	b.Reset()
	return b
}

// Do runs attempt until it succeeds, fails terminally, or the retries are
// exhausted. Failure is reported in the Result rather than as a separate
// error so callers can record it as data.
func Do(ctx context.Context, attempt Attempt, opts ...Option) Result {
	o := options{
		retries:    DefaultRetries,
		baseDelay:  DefaultBaseDelay,
		multiplier: DefaultMultiplier,
		classifier: IsTransient,
		succeeded:  IsOK,
		sleeper:    Sleep,
	}
	for _, opt := range opts {
		opt(&o)
	}

	b := newBackOff(o.baseDelay, o.multiplier)

	var res Result
	for i := 0; i <= o.retries; i++ {
		statusCode, err := attempt(ctx)
		res = Result{StatusCode: statusCode, Attempts: i + 1, Err: err}

		if o.succeeded(statusCode, err) {
			res.Success = true
			return res
		}
		if !o.classifier(statusCode, err) || i == o.retries {
			return res
		}

		wait := b.NextBackOff()
		if o.onRetry != nil {
			o.onRetry(i+1, statusCode, err, wait)
		}
		if sleepErr := o.sleeper(ctx, wait); sleepErr != nil {
			if res.Err == nil {
				res.Err = sleepErr
			}
			return res
		}
	}
	return res
}
