package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"bard/internal/ipc"
)

func newProfileCommand(ctx *commandContext) *cobra.Command {
	profileCmd := &cobra.Command{
		Use:   "profiles",
		Short: "Manage enrolled voice profiles",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List enrolled voice profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ProfileList()
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if len(resp.Profiles) == 0 {
					fmt.Fprintln(stdout, "No voice profiles enrolled")
					return nil
				}
				rows := make([][]string, 0, len(resp.Profiles))
				for _, profile := range resp.Profiles {
					isDefault := ""
					if profile.IsDefault {
						isDefault = "yes"
					}
					rows = append(rows, []string{profile.ID, profile.Name, isDefault, profile.Enrolled})
				}
				table := renderTable(
					[]string{"ID", "Name", "Default", "Enrolled"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(stdout, table)
				return nil
			})
		},
	}

	var audioPath string
	var isDefault, consent bool
	enrollCmd := &cobra.Command{
		Use:   "enroll <name>",
		Short: "Enroll a speaker from a recorded audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if audioPath == "" {
				return errors.New("an audio recording is required; pass --audio")
			}
			if !consent {
				return errors.New("voice enrollment stores a biometric voiceprint; pass --consent to confirm the speaker agreed")
			}
			resolved, err := filepath.Abs(audioPath)
			if err != nil {
				return fmt.Errorf("resolve audio path: %w", err)
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ProfileEnroll(ipc.ProfileEnrollRequest{
					Name:      args[0],
					AudioPath: resolved,
					IsDefault: isDefault,
					Consent:   consent,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Enrolled %q (%s)\n", resp.Profile.Name, resp.Profile.ID)
				return nil
			})
		},
	}
	enrollCmd.Flags().StringVar(&audioPath, "audio", "", "Path to a wav or mp3 recording of the speaker")
	enrollCmd.Flags().BoolVar(&isDefault, "default", false, "Mark this profile as the session default")
	enrollCmd.Flags().BoolVar(&consent, "consent", false, "Confirm the speaker consented to enrollment")

	removeCmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a voice profile and its stored embedding",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ProfileRemove(args[0])
				if err != nil {
					return err
				}
				if resp.Removed {
					fmt.Fprintf(cmd.OutOrStdout(), "Profile %s removed\n", args[0])
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Profile %s not found\n", args[0])
				}
				return nil
			})
		},
	}

	profileCmd.AddCommand(listCmd, enrollCmd, removeCmd)
	return profileCmd
}
