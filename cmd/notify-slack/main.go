// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package main is the Slack notifier: it announces each day's web meetings to
// their registered Slack channels and serves the registration API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var v *viper.Viper

	root := &cobra.Command{
		Use:           "notify-slack",
		Short:         "Announce today's web meetings to Slack channels",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			v, err = newViper()
			if err != nil {
				return err
			}
			// Based on the debug flag, override the log level used by [logging.InitStructureLogConfig]
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				v.Set(envLogLevel, "debug")
			}
			if f := cmd.Flags().Lookup("port"); f != nil && f.Changed {
				v.Set(envPort, f.Value.String())
			}
			if f := cmd.Flags().Lookup("bind"); f != nil && f.Changed {
				v.Set(envBind, f.Value.String())
			}
			return nil
		},
	}
	root.PersistentFlags().BoolP("debug", "d", false, "enable debug logging")

	loader := func() (config, error) { return loadConfig(v) }
	root.AddCommand(newServeCmd(loader), newDispatchCmd(loader))

	return root
}
