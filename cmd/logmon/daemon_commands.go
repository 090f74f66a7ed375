package main

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"logmon/internal/daemonctl"
	"logmon/internal/ipc"
)

func launchOptions(ctx *commandContext, logLevel string) daemonctl.LaunchOptions {
	return daemonctl.LaunchOptions{
		ConfigPath: ctx.configPath(),
		LogLevel:   logLevel,
	}
}

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	var startLogLevel string
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the logmond daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := daemonctl.ResolveDaemonExecutable()
			if err != nil {
				return err
			}

			result, err := daemonctl.EnsureStarted(
				ctx.socketPath(),
				exe,
				launchOptions(ctx, startLogLevel),
				10*time.Second,
			)
			if err != nil {
				return err
			}

			if result.Launched {
				fmt.Fprintln(stdout, "Daemon not running, launching...")
			}
			switch result.State {
			case daemonctl.StartStateStarted:
				fmt.Fprintln(stdout, "Daemon started")
			case daemonctl.StartStateAlreadyRunning:
				fmt.Fprintln(stdout, "Daemon already running")
			case daemonctl.StartStateRequested:
				if strings.TrimSpace(result.Message) != "" {
					fmt.Fprintln(stdout, result.Message)
					return nil
				}
				fmt.Fprintln(stdout, "Start request sent")
			}
			return nil
		},
	}
	startCmd.Flags().StringVar(&startLogLevel, "log-level", "", "Log level for the launched daemon")

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the logmond daemon (completely terminates the process)",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			result, err := daemonctl.StopAndTerminate(ctx.socketPath(), ctx.configValue(), 5*time.Second)
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(stdout, "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if !result.StopAcknowledged {
				fmt.Fprintln(stdout, "Stop request sent")
			} else {
				fmt.Fprintln(stdout, "Stopping monitoring...")
			}
			if result.ForcedKill && result.PID > 0 {
				fmt.Fprintf(stdout, "Stopping daemon process (pid %d)...\n", result.PID)
			}
			fmt.Fprintln(stdout, "Daemon stopped")
			return nil
		},
	}

	var restartLogLevel string
	restartCmd := &cobra.Command{
		Use:   "restart",
		Short: "Restart the logmond daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := daemonctl.ResolveDaemonExecutable()
			if err != nil {
				return err
			}

			result, err := daemonctl.Restart(
				ctx.socketPath(),
				ctx.configValue(),
				exe,
				launchOptions(ctx, restartLogLevel),
				5*time.Second,
				10*time.Second,
			)
			if err != nil {
				return err
			}
			if result.WasRunning {
				fmt.Fprintln(stdout, "Daemon stopped")
			}
			fmt.Fprintln(stdout, "Daemon started")
			return nil
		},
	}
	restartCmd.Flags().StringVar(&restartLogLevel, "log-level", "", "Log level for the relaunched daemon")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and monitoring status",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			reachable, _, err := daemonctl.ProcessInfo(ctx.socketPath())
			if err != nil || !reachable {
				for _, line := range renderSectionHeader("Daemon", colorize) {
					fmt.Fprintln(stdout, line)
				}
				fmt.Fprintln(stdout, renderStatusLine("Daemon", statusError, "not running", colorize))
				return nil
			}

			return ctx.withClient(func(client *ipc.Client) error {
				status, err := client.Status()
				if err != nil {
					return err
				}

				for _, line := range renderSectionHeader("Daemon", colorize) {
					fmt.Fprintln(stdout, line)
				}
				runningKind := statusError
				runningDetail := "stopped"
				if status.Running {
					runningKind = statusOK
					runningDetail = "running since " + status.StartedAt.Local().Format(time.RFC1123)
				}
				fmt.Fprintln(stdout, renderStatusLine("Monitoring", runningKind, runningDetail, colorize))
				fmt.Fprintln(stdout, renderStatusLine("PID", statusInfo, strconv.Itoa(status.PID), colorize))
				fmt.Fprintln(stdout, renderStatusLine("Instance", statusInfo, status.InstanceID, colorize))
				fmt.Fprintln(stdout, renderStatusLine("Socket", statusInfo, status.SocketPath, colorize))
				fmt.Fprintln(stdout, renderStatusLine("Archive", statusInfo, archiveDetail(status.ArchiveEnabled, status.ArchivedLines, status.ArchivePath), colorize))
				fmt.Fprintln(stdout)

				for _, line := range renderSectionHeader("Targets", colorize) {
					fmt.Fprintln(stdout, line)
				}
				rows := buildCursorRows(status.WatchedFiles, status.Cursors)
				if len(rows) == 0 {
					fmt.Fprintln(stdout, "No targets configured")
					return nil
				}
				fmt.Fprintln(stdout, renderTable(
					[]string{"File", "Cursor"},
					rows,
					[]columnAlignment{alignLeft, alignRight}))

				fmt.Fprintf(stdout, "\nSnapshot lines: %d  Delivered lines: %d\n",
					status.SnapshotLines, status.DeliveredLines)
				return nil
			})
		},
	}

	return []*cobra.Command{startCmd, stopCmd, restartCmd, statusCmd}
}

func archiveDetail(enabled bool, lines int64, path string) string {
	if !enabled {
		return "disabled"
	}
	return fmt.Sprintf("%d lines at %s", lines, path)
}

func buildCursorRows(files []string, cursors map[string]int64) [][]string {
	rows := make([][]string, 0, len(files))
	seen := make(map[string]struct{}, len(files))
	for _, file := range files {
		rows = append(rows, []string{file, strconv.FormatInt(cursors[file], 10)})
		seen[file] = struct{}{}
	}
	// Rotated files carry cursors too; list them after the watched set.
	extra := make([]string, 0, len(cursors))
	for file := range cursors {
		if _, ok := seen[file]; !ok {
			extra = append(extra, file)
		}
	}
	sort.Strings(extra)
	for _, file := range extra {
		rows = append(rows, []string{file, strconv.FormatInt(cursors[file], 10)})
	}
	return rows
}
