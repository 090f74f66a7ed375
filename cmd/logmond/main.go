// Command logmond is the log monitoring daemon. It assembles the initial
// snapshot at startup, polls the configured targets, and serves snapshot,
// follow, and history requests over a Unix socket.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"logmon/internal/config"
	"logmon/internal/daemonrun"
)

func newDaemonCommand() *cobra.Command {
	var configFlag string
	var logLevel string

	cmd := &cobra.Command{
		Use:           "logmond",
		Short:         "Log monitoring daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(configFlag)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{LogLevel: logLevel})
		},
	}
	cmd.Flags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
	return cmd
}

func main() {
	if err := newDaemonCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
