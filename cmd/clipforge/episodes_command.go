package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"clipforge/internal/services/captioner"
	"clipforge/internal/store"
)

func newEpisodesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "episodes",
		Short: "List registered episodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				episodes, err := st.ListEpisodes(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(episodes) == 0 {
					fmt.Fprintln(out, "No episodes yet. Add one with `clipforge process <path>`.")
					return nil
				}

				rows := make([][]string, 0, len(episodes))
				for _, episode := range episodes {
					duration := "-"
					if episode.Duration > 0 {
						duration = captioner.FormatTimestamp(episode.Duration)
					}
					rows = append(rows, []string{
						strconv.FormatInt(episode.ID, 10),
						episode.Filename,
						duration,
						string(episode.Status),
						formatLocalTime(episode.CreatedAt),
						formatOptionalTime(episode.ProcessedAt),
					})
				}

				fmt.Fprintln(out, renderTable(out,
					[]string{"ID", "Filename", "Duration", "Status", "Created", "Processed"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignLeft, alignLeft}))
				return nil
			})
		},
	}
}
