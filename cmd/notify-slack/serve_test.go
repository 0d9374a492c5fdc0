// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeOrShutdown(t *testing.T) {
	t.Run("success leaves everything running", func(t *testing.T) {
		shutdowns := 0

		err := subscribeOrShutdown(func() error { return nil }, func() { shutdowns++ })

		require.NoError(t, err)
		assert.Zero(t, shutdowns)
	})

	t.Run("failure shuts down before returning", func(t *testing.T) {
		subscribeErr := errors.New("nats: permissions violation")
		shutdowns := 0

		err := subscribeOrShutdown(func() error { return subscribeErr }, func() { shutdowns++ })

		assert.ErrorIs(t, err, subscribeErr)
		assert.Equal(t, 1, shutdowns)
	})
}

func TestSubscribeOrShutdown_ReleasesBackgroundWork(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wg := sync.WaitGroup{}

	// Stands in for the scheduler loop, which only exits on cancellation.
	schedulerStopped := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		close(schedulerStopped)
	}()

	// The HTTP shutdown goroutine releases this slot.
	wg.Add(1)
	httpServer := &http.Server{Addr: "127.0.0.1:0", ReadHeaderTimeout: time.Second}
	closed := 0
	a := &app{otelShutdown: func(context.Context) error { closed++; return nil }}

	returned := make(chan error, 1)
	go func() {
		returned <- subscribeOrShutdown(
			func() error { return errors.New("nats: no responders") },
			func() { gracefulShutdown(httpServer, a, &wg, cancel) },
		)
	}()

	select {
	case err := <-returned:
		assert.EqualError(t, err, "nats: no responders")
	case <-time.After(5 * time.Second):
		t.Fatal("startup failure did not finish shutting down")
	}
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.Equal(t, 1, closed)
	select {
	case <-schedulerStopped:
	default:
		t.Fatal("scheduler loop still running")
	}
}
