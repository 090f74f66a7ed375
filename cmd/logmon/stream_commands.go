package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"logmon/internal/ipc"
)

const followWaitMS = 5000

func newSnapshotCommand(ctx *commandContext) *cobra.Command {
	var withKeys bool
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Print the initial snapshot assembled at daemon startup",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Snapshot()
				if err != nil {
					return err
				}
				if len(resp.Lines) == 0 {
					fmt.Fprintln(stdout, "Snapshot is empty")
					return nil
				}
				for _, line := range resp.Lines {
					if withKeys {
						fmt.Fprintf(stdout, "%d\t%s\n", line.Key, line.Text)
						continue
					}
					fmt.Fprintln(stdout, line.Text)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&withKeys, "keys", false, "Prefix each line with its sort key")
	return cmd
}

func newFollowCommand(ctx *commandContext) *cobra.Command {
	var fromStart bool
	cmd := &cobra.Command{
		Use:   "follow",
		Short: "Stream newly delivered lines until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			signalCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return ctx.withClient(func(client *ipc.Client) error {
				var since uint64
				if !fromStart {
					// Skip the backlog; start from the newest line.
					resp, err := client.Follow(ipc.FollowRequest{Since: 0, Limit: 1})
					if err != nil {
						return err
					}
					since = resp.Next
				}
				for {
					if err := signalCtx.Err(); err != nil {
						return nil
					}
					resp, err := client.Follow(ipc.FollowRequest{
						Since:  since,
						WaitMS: followWaitMS,
					})
					if err != nil {
						if errors.Is(err, context.Canceled) {
							return nil
						}
						return err
					}
					for _, evt := range resp.Events {
						fmt.Fprintln(stdout, evt.Text)
					}
					if resp.Next > since {
						since = resp.Next
					}
				}
			})
		},
	}
	cmd.Flags().BoolVar(&fromStart, "from-start", false, "Replay the daemon's buffered lines before following")
	return cmd
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print archived lines from the daemon's SQLite archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.History(ipc.HistoryRequest{Limit: limit})
				if err != nil {
					return err
				}
				if len(resp.Events) == 0 {
					fmt.Fprintln(stdout, "Archive is empty")
					return nil
				}
				for _, evt := range resp.Events {
					fmt.Fprintln(stdout, evt.Text)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 100, "Maximum number of lines to print")
	return cmd
}
