package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"bard/internal/ipc"
)

func newEngineCommands(ctx *commandContext) []*cobra.Command {
	playCmd := &cobra.Command{
		Use:   "play <track-id>",
		Short: "Play a catalogued track immediately",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.EnginePlay(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Playing %q\n", resp.Track.Name)
				return nil
			})
		},
	}

	var fadeFlag string
	crossfadeCmd := &cobra.Command{
		Use:   "crossfade <track-id>",
		Short: "Crossfade to a catalogued track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.EngineCrossfade(args[0], fadeFlag)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Crossfading to %q\n", resp.Track.Name)
				return nil
			})
		},
	}
	crossfadeCmd.Flags().StringVarP(&fadeFlag, "fade", "f", "", "Fade type: instant, quick, musical, or long")

	sfxCmd := &cobra.Command{
		Use:   "sfx <effect-id>",
		Short: "Layer a sound effect over the music",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.EngineSfx(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Played %q\n", resp.Effect.Name)
				return nil
			})
		},
	}

	pauseCmd := &cobra.Command{
		Use:   "pause",
		Short: "Pause music playback",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.EnginePause(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Playback paused")
				return nil
			})
		},
	}

	resumeCmd := &cobra.Command{
		Use:   "resume",
		Short: "Resume paused playback",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.EngineResume(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Playback resumed")
				return nil
			})
		},
	}

	silenceCmd := &cobra.Command{
		Use:   "silence",
		Short: "Stop music and all layered effects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.EngineStopAll(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Playback stopped")
				return nil
			})
		},
	}

	duckCmd := &cobra.Command{
		Use:   "duck",
		Short: "Lower the music for table talk",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.EngineDuck(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Music ducked")
				return nil
			})
		},
	}

	unduckCmd := &cobra.Command{
		Use:   "unduck",
		Short: "Restore the music volume",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.EngineReleaseDuck(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Music restored")
				return nil
			})
		},
	}

	volumeCmd := &cobra.Command{
		Use:   "volume [channel] [level]",
		Short: "Show or set mixer volumes",
		Long:  "With no arguments, shows the current mix. With a channel (master, music, or sfx) and a level between 0 and 1, sets that channel.",
		Args:  cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				stdout := cmd.OutOrStdout()
				if len(args) == 0 {
					volumes, err := client.EngineVolumes()
					if err != nil {
						return err
					}
					fmt.Fprintln(stdout, renderVolumeTable(volumes))
					return nil
				}
				if len(args) != 2 {
					return fmt.Errorf("volume requires a channel and a level")
				}
				level, err := strconv.ParseFloat(args[1], 64)
				if err != nil {
					return fmt.Errorf("parse level %q: %w", args[1], err)
				}
				volumes, err := client.EngineSetVolume(args[0], level)
				if err != nil {
					return err
				}
				fmt.Fprintln(stdout, renderVolumeTable(volumes))
				return nil
			})
		},
	}

	fadeCmd := &cobra.Command{
		Use:   "fade <type>",
		Short: "Set the default crossfade type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.EngineSetCrossfade(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Default crossfade set to %s\n", args[0])
				return nil
			})
		},
	}

	return []*cobra.Command{
		playCmd, crossfadeCmd, sfxCmd, pauseCmd, resumeCmd,
		silenceCmd, duckCmd, unduckCmd, volumeCmd, fadeCmd,
	}
}
