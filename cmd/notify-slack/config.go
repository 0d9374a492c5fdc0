// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/infrastructure/slack"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/infrastructure/store"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/logging"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/scheduler"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/service"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/pkg/retry"
)

// Environment variable names read by the notifier.
const (
	envPort                = "PORT"
	envBind                = "BIND"
	envNatsURL             = "NATS_URL"
	envNatsTimeout         = "NATS_TIMEOUT"
	envNatsMaxReconnect    = "NATS_MAX_RECONNECT"
	envNatsReconnectWait   = "NATS_RECONNECT_WAIT"
	envMeetingsBucket      = "MEETINGS_BUCKET"
	envChannelsBucket      = "CHANNELS_BUCKET"
	envTimezone            = "NOTIFY_TIMEZONE"
	envDispatchSchedule    = "DISPATCH_SCHEDULE"
	envDispatchConcurrency = "DISPATCH_CONCURRENCY"
	envRetryAttempts       = "RETRY_ATTEMPTS"
	envRetryBaseDelay      = "RETRY_BASE_DELAY"
	envWebhookTimeout      = "WEBHOOK_TIMEOUT"
	envLogLevel            = "LOG_LEVEL"
	envLogAddSource        = "LOG_ADD_SOURCE"
)

// config is the notifier configuration.
type config struct {
	Port string
	Bind string

	NatsURL           string
	NatsTimeout       time.Duration
	NatsMaxReconnect  int
	NatsReconnectWait time.Duration
	MeetingsBucket    string
	ChannelsBucket    string

	Location            *time.Location
	DispatchSchedule    string
	DispatchConcurrency int
	RetryAttempts       int
	RetryBaseDelay      time.Duration
	WebhookTimeout      time.Duration

	Log logging.Config
}

// newViper reads configuration from the environment and, when present, a
// .env file in the working directory. The environment wins.
func newViper() (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault(envPort, "8080")
	v.SetDefault(envBind, "*")
	v.SetDefault(envNatsURL, "nats://localhost:4222")
	v.SetDefault(envNatsTimeout, "10s")
	v.SetDefault(envNatsMaxReconnect, 3)
	v.SetDefault(envNatsReconnectWait, "2s")
	v.SetDefault(envMeetingsBucket, store.KVStoreNameWebMeetings)
	v.SetDefault(envChannelsBucket, store.KVStoreNameSlackChannels)
	v.SetDefault(envTimezone, "UTC")
	v.SetDefault(envDispatchSchedule, scheduler.DefaultSchedule)
	v.SetDefault(envDispatchConcurrency, 1)
	v.SetDefault(envRetryAttempts, retry.DefaultRetries)
	v.SetDefault(envRetryBaseDelay, retry.DefaultBaseDelay.String())
	v.SetDefault(envWebhookTimeout, slack.DefaultClientTimeout.String())
	v.SetDefault(envLogLevel, "")
	v.SetDefault(envLogAddSource, false)

	v.AutomaticEnv()

	if _, err := os.Stat(".env"); err == nil {
		v.SetConfigFile(".env")
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading .env: %w", err)
		}
	}

	return v, nil
}

// loadConfig validates the values held by v.
func loadConfig(v *viper.Viper) (config, error) {
	loc, err := time.LoadLocation(v.GetString(envTimezone))
	if err != nil {
		return config{}, fmt.Errorf("invalid %s: %w", envTimezone, err)
	}

	cfg := config{
		Port:                v.GetString(envPort),
		Bind:                v.GetString(envBind),
		NatsURL:             v.GetString(envNatsURL),
		NatsTimeout:         v.GetDuration(envNatsTimeout),
		NatsMaxReconnect:    v.GetInt(envNatsMaxReconnect),
		NatsReconnectWait:   v.GetDuration(envNatsReconnectWait),
		MeetingsBucket:      v.GetString(envMeetingsBucket),
		ChannelsBucket:      v.GetString(envChannelsBucket),
		Location:            loc,
		DispatchSchedule:    v.GetString(envDispatchSchedule),
		DispatchConcurrency: v.GetInt(envDispatchConcurrency),
		RetryAttempts:       v.GetInt(envRetryAttempts),
		RetryBaseDelay:      v.GetDuration(envRetryBaseDelay),
		WebhookTimeout:      v.GetDuration(envWebhookTimeout),
		Log: logging.Config{
			Level:     v.GetString(envLogLevel),
			AddSource: v.GetBool(envLogAddSource),
		},
	}

	var errs []error
	if cfg.NatsURL == "" {
		errs = append(errs, fmt.Errorf("%s is required", envNatsURL))
	}
	if cfg.MeetingsBucket == "" || cfg.ChannelsBucket == "" {
		errs = append(errs, fmt.Errorf("%s and %s are required", envMeetingsBucket, envChannelsBucket))
	}
	if cfg.DispatchConcurrency < 1 {
		errs = append(errs, fmt.Errorf("%s must be at least 1", envDispatchConcurrency))
	}
	if cfg.RetryAttempts < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", envRetryAttempts))
	}
	if cfg.RetryBaseDelay <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", envRetryBaseDelay))
	}
	if err := errors.Join(errs...); err != nil {
		return config{}, err
	}

	return cfg, nil
}

// serviceConfig maps the dispatch settings onto the service layer.
func (c config) serviceConfig() service.ServiceConfig {
	sc := service.DefaultServiceConfig()
	sc.Location = c.Location
	sc.Concurrency = c.DispatchConcurrency
	sc.RetryAttempts = c.RetryAttempts
	sc.RetryBaseDelay = c.RetryBaseDelay
	return sc
}

// addr is the HTTP listen address.
func (c config) addr() string {
	if c.Bind == "*" || c.Bind == "" {
		return ":" + c.Port
	}
	return c.Bind + ":" + c.Port
}
