package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"bard/internal/config"
	"bard/internal/ipc"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon, session, and engine status",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)
			cfg := ctx.configValue()

			client, err := ctx.dialClient()
			if err != nil {
				renderOfflineStatus(stdout, cfg, ctx.socketPath(), colorize)
				return nil
			}
			defer client.Close()

			status, err := client.Status()
			if err != nil {
				return fmt.Errorf("query daemon status: %w", err)
			}
			volumes, volErr := client.EngineVolumes()

			printSection(stdout, "Daemon", colorize)
			fmt.Fprintln(stdout, renderStatusLine("Bard", statusOK, fmt.Sprintf("Running (pid %d)", status.PID), colorize))
			fmt.Fprintln(stdout, renderStatusLine("Socket", statusInfo, ctx.socketPath(), colorize))
			fmt.Fprintln(stdout, renderStatusLine("Catalog", statusInfo, status.CatalogPath, colorize))
			fmt.Fprintln(stdout, notificationLine(cfg, colorize))
			fmt.Fprintln(stdout)

			printSection(stdout, "Session", colorize)
			if status.Active {
				detail := fmt.Sprintf("%s (%s)", status.SessionName, status.Mode)
				fmt.Fprintln(stdout, renderStatusLine("Session", statusOK, detail, colorize))
				fmt.Fprintln(stdout, renderStatusLine("Pipeline", statusInfo, status.Pipeline, colorize))
				fmt.Fprintln(stdout, renderStatusLine("Detections", statusInfo, fmt.Sprintf("%d", status.Detections), colorize))
				elapsed := (time.Duration(status.ElapsedMS) * time.Millisecond).Truncate(time.Second)
				fmt.Fprintln(stdout, renderStatusLine("Elapsed", statusInfo, elapsed.String(), colorize))
			} else {
				fmt.Fprintln(stdout, renderStatusLine("Session", statusInfo, "No active session (run `bard session start`)", colorize))
			}
			fmt.Fprintln(stdout)

			printSection(stdout, "Engine", colorize)
			fmt.Fprintln(stdout, renderStatusLine("State", statusInfo, status.Engine, colorize))
			nowPlaying := status.NowPlaying
			if nowPlaying == "" {
				nowPlaying = "nothing"
			}
			fmt.Fprintln(stdout, renderStatusLine("Now Playing", statusInfo, nowPlaying, colorize))
			if volErr == nil {
				fmt.Fprint(stdout, renderVolumeTable(volumes))
				fmt.Fprintln(stdout)
			}
			return nil
		},
	}
}

func renderOfflineStatus(stdout io.Writer, cfg *config.Config, socket string, colorize bool) {
	printSection(stdout, "Daemon", colorize)
	fmt.Fprintln(stdout, renderStatusLine("Bard", statusWarn, "Not running (run `bard start`)", colorize))
	fmt.Fprintln(stdout, renderStatusLine("Socket", statusInfo, socket, colorize))
	if cfg != nil {
		fmt.Fprintln(stdout, renderStatusLine("Catalog", statusInfo, cfg.CatalogPath(), colorize))
		fmt.Fprintln(stdout, renderStatusLine("Music", statusInfo, cfg.Paths.MusicDir, colorize))
		fmt.Fprintln(stdout, renderStatusLine("Sfx", statusInfo, cfg.Paths.SfxDir, colorize))
		fmt.Fprintln(stdout, notificationLine(cfg, colorize))
	}
}

func notificationLine(cfg *config.Config, colorize bool) string {
	if cfg != nil && strings.TrimSpace(cfg.Notifications.NtfyTopic) != "" {
		return renderStatusLine("Notifications", statusOK, "Configured", colorize)
	}
	return renderStatusLine("Notifications", statusWarn, "Not configured", colorize)
}

func renderVolumeTable(volumes *ipc.VolumesResponse) string {
	ducked := "no"
	if volumes.Ducked {
		ducked = "yes"
	}
	rows := [][]string{
		{"Master", fmt.Sprintf("%.2f", volumes.Master)},
		{"Music", fmt.Sprintf("%.2f", volumes.Music)},
		{"Sfx", fmt.Sprintf("%.2f", volumes.Sfx)},
		{"Ducked", ducked},
	}
	return renderTable([]string{"Channel", "Level"}, rows, []columnAlignment{alignLeft, alignRight})
}

func printSection(stdout io.Writer, title string, colorize bool) {
	for _, line := range renderSectionHeader(title, colorize) {
		fmt.Fprintln(stdout, line)
	}
}
