// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/logging"
)

func newDispatchCmd(loadConfig func() (config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "dispatch",
		Short: "Run the dispatch pipeline once and print the report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runDispatch(cmd.Context(), cfg)
		},
	}
}

// runDispatch performs a single run. Per-channel delivery failures are part
// of the report; only a pipeline error makes the command fail.
func runDispatch(parent context.Context, cfg config) error {
	logging.InitStructureLogConfig(cfg.Log)

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	done := make(chan os.Signal, 1)
	gracefulCloseWG := sync.WaitGroup{}

	app, err := setupApp(ctx, cfg, &gracefulCloseWG, done)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up notifier")
		return err
	}

	report, runErr := app.dispatchService.Run(ctx)

	cancel()
	app.close()
	gracefulCloseWG.Wait()

	if runErr != nil {
		return runErr
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
