// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/handlers"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/logging"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/scheduler"
)

func newServeCmd(loadConfig func() (config, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the registration API, the NATS dispatch handler and the dispatch schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runServe(cfg)
		},
	}
	cmd.Flags().StringP("port", "p", "8080", "listen port")
	cmd.Flags().String("bind", "*", "interface to bind on")
	return cmd
}

func runServe(cfg config) error {
	logging.InitStructureLogConfig(cfg.Log)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	gracefulCloseWG := sync.WaitGroup{}

	app, err := setupApp(ctx, cfg, &gracefulCloseWG, done)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up notifier")
		return err
	}

	sched, err := scheduler.New(app.dispatchService, cfg.DispatchSchedule, cfg.Location)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up dispatch schedule")
		app.close()
		return err
	}
	gracefulCloseWG.Add(1)
	go func() {
		defer gracefulCloseWG.Done()
		sched.Run(ctx)
	}()

	api := NewNotifierAPI(app.meetingService, app.channelService, app.dispatchService, app.recorder.Handler())
	httpServer := setupHTTPServer(cfg, api, &gracefulCloseWG)

	// Create NATS subscriptions for the service.
	dispatchHandler := handlers.NewDispatchHandler(sched)
	err = subscribeOrShutdown(
		func() error { return createNatsSubscriptions(ctx, app.natsConn, dispatchHandler) },
		func() { gracefulShutdown(httpServer, app, &gracefulCloseWG, cancel) },
	)
	if err != nil {
		return err
	}

	slog.Info("notifier started",
		"addr", cfg.addr(),
		"schedule", cfg.DispatchSchedule,
		"timezone", cfg.Location.String(),
		"next_run", sched.Next(app.now()),
	)

	// This next line blocks until SIGINT or SIGTERM is received.
	<-done

	gracefulShutdown(httpServer, app, &gracefulCloseWG, cancel)
	return nil
}

// subscribeOrShutdown runs subscribe and, when it fails, shuts down what was
// already started before returning the error.
func subscribeOrShutdown(subscribe func() error, shutdown func()) error {
	if err := subscribe(); err != nil {
		slog.With(logging.ErrKey, err).Error("error creating NATS subscriptions")
		shutdown()
		return err
	}
	return nil
}
