package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bard/internal/ipc"
)

func newLibraryCommand(ctx *commandContext) *cobra.Command {
	libraryCmd := &cobra.Command{
		Use:   "library",
		Short: "Browse and import the music and sound effect catalog",
	}

	var moodFlag string
	tracksCmd := &cobra.Command{
		Use:   "tracks",
		Short: "List catalogued music tracks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.TrackList(moodFlag)
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if len(resp.Tracks) == 0 {
					fmt.Fprintln(stdout, "No tracks catalogued (run `bard library import`)")
					return nil
				}
				rows := make([][]string, 0, len(resp.Tracks))
				for _, track := range resp.Tracks {
					duration := ""
					if track.DurationMS > 0 {
						duration = (time.Duration(track.DurationMS) * time.Millisecond).Truncate(time.Second).String()
					}
					rows = append(rows, []string{track.ID, track.Name, track.Mood, track.Genre, duration})
				}
				table := renderTable(
					[]string{"ID", "Name", "Mood", "Genre", "Duration"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
				)
				fmt.Fprintln(stdout, table)
				return nil
			})
		},
	}
	tracksCmd.Flags().StringVarP(&moodFlag, "mood", "m", "", "Filter tracks by mood")

	var categoryFlag string
	effectsCmd := &cobra.Command{
		Use:   "effects",
		Short: "List catalogued sound effects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.EffectList(categoryFlag)
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if len(resp.Effects) == 0 {
					fmt.Fprintln(stdout, "No sound effects catalogued (run `bard library import`)")
					return nil
				}
				rows := make([][]string, 0, len(resp.Effects))
				for _, effect := range resp.Effects {
					rows = append(rows, []string{effect.ID, effect.Name, effect.Category, effect.Mood})
				}
				table := renderTable(
					[]string{"ID", "Name", "Category", "Mood"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(stdout, table)
				return nil
			})
		},
	}
	effectsCmd.Flags().StringVar(&categoryFlag, "category", "", "Filter effects by category")

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Rescan the music and sfx directories into the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Import()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d tracks and %d effects\n", resp.Tracks, resp.Effects)
				return nil
			})
		},
	}

	libraryCmd.AddCommand(tracksCmd, effectsCmd, importCmd)
	return libraryCmd
}
