// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"time"

	"github.com/linuxfoundation/lfx-v2-slack-notifier/pkg/retry"
)

type Service interface {
	ServiceReady() bool
}

// ServiceConfig is the configuration for the Services.
type ServiceConfig struct {
	// Location is the single timezone used for "today", digest headers,
	// normalized meeting dates and date-range bounds.
	Location *time.Location
	// Concurrency is the number of channel groups delivered at once.
	Concurrency int
	// RetryAttempts is the number of retries after the first delivery attempt.
	RetryAttempts int
	// RetryBaseDelay is the wait before the first retry; it doubles each time.
	RetryBaseDelay time.Duration
	// Clock returns the current time; time.Now when nil.
	Clock func() time.Time
}

// DefaultServiceConfig returns the production defaults.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Location:       time.UTC,
		Concurrency:    1,
		RetryAttempts:  retry.DefaultRetries,
		RetryBaseDelay: retry.DefaultBaseDelay,
		Clock:          time.Now,
	}
}

func (c ServiceConfig) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

func (c ServiceConfig) now() time.Time {
	if c.Clock == nil {
		return time.Now()
	}
	return c.Clock()
}
