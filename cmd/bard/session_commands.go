package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bard/internal/ipc"
)

func newSessionCommand(ctx *commandContext) *cobra.Command {
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Manage listening sessions",
	}

	var startName string
	var startMode string
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start a new listening session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SessionStart(startName, startMode)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Session %q started in %s mode\n", resp.Name, resp.Mode)
				return nil
			})
		},
	}
	startCmd.Flags().StringVarP(&startName, "name", "n", "", "Session name (defaults to a timestamp)")
	startCmd.Flags().StringVarP(&startMode, "mode", "m", "", "Detection mode: autonomous or collaborative")

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the active session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.SessionStop(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Session stopped")
				return nil
			})
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SessionList()
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if len(resp.Sessions) == 0 {
					fmt.Fprintln(stdout, "No sessions recorded")
					return nil
				}
				rows := make([][]string, 0, len(resp.Sessions))
				for _, sess := range resp.Sessions {
					ended := sess.EndedAt
					if sess.Active {
						ended = "active"
					}
					rows = append(rows, []string{sess.ID, sess.Name, sess.Mode, sess.StartedAt, ended})
				}
				table := renderTable(
					[]string{"ID", "Name", "Mode", "Started", "Ended"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(stdout, table)
				return nil
			})
		},
	}

	eventsCmd := &cobra.Command{
		Use:   "events <session-id>",
		Short: "Show detections recorded during a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SessionEvents(args[0])
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if len(resp.Events) == 0 {
					fmt.Fprintln(stdout, "No detections recorded")
					return nil
				}
				rows := make([][]string, 0, len(resp.Events))
				for _, event := range resp.Events {
					offset := (time.Duration(event.OffsetMS) * time.Millisecond).Truncate(time.Second)
					rows = append(rows, []string{
						offset.String(),
						event.Kind,
						event.Keyword,
						event.Emotion,
						fmt.Sprintf("%.2f", event.Confidence),
						event.Transcript,
					})
				}
				table := renderTable(
					[]string{"Offset", "Kind", "Keyword", "Emotion", "Confidence", "Transcript"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				)
				fmt.Fprintln(stdout, table)
				return nil
			})
		},
	}

	sessionCmd.AddCommand(startCmd, stopCmd, listCmd, eventsCmd)
	return sessionCmd
}
