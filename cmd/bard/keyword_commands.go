package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bard/internal/ipc"
)

func newKeywordCommand(ctx *commandContext) *cobra.Command {
	keywordCmd := &cobra.Command{
		Use:   "keywords",
		Short: "Manage the trigger vocabulary",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List trigger words",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.KeywordList()
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if len(resp.Keywords) == 0 {
					fmt.Fprintln(stdout, "No trigger words configured")
					return nil
				}
				rows := make([][]string, 0, len(resp.Keywords))
				for _, kw := range resp.Keywords {
					rows = append(rows, []string{
						kw.Word,
						kw.Category,
						kw.Mood,
						fmt.Sprintf("%d", kw.Priority),
						strings.Join(kw.Variations, ", "),
					})
				}
				table := renderTable(
					[]string{"Word", "Category", "Mood", "Priority", "Variations"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				)
				fmt.Fprintln(stdout, table)
				return nil
			})
		},
	}

	var category, mood string
	var priority int
	var variations []string
	addCmd := &cobra.Command{
		Use:   "add <word>",
		Short: "Add or update a trigger word",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				kw := ipc.Keyword{
					Word:       args[0],
					Category:   category,
					Mood:       mood,
					Priority:   priority,
					Variations: variations,
				}
				if _, err := client.KeywordAdd(kw); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Keyword %q saved\n", strings.ToLower(args[0]))
				return nil
			})
		},
	}
	addCmd.Flags().StringVar(&category, "category", "", "Scene category, e.g. combat or exploration")
	addCmd.Flags().StringVar(&mood, "mood", "", "Mood the keyword maps to")
	addCmd.Flags().IntVar(&priority, "priority", 0, "Match priority when several keywords hit")
	addCmd.Flags().StringSliceVar(&variations, "variation", nil, "Alternate forms that also match")

	removeCmd := &cobra.Command{
		Use:   "remove <word>",
		Short: "Remove a trigger word",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.KeywordRemove(args[0])
				if err != nil {
					return err
				}
				if resp.Removed {
					fmt.Fprintf(cmd.OutOrStdout(), "Keyword %q removed\n", strings.ToLower(args[0]))
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Keyword %q not found\n", strings.ToLower(args[0]))
				}
				return nil
			})
		},
	}

	keywordCmd.AddCommand(listCmd, addCmd, removeCmd)
	return keywordCmd
}
