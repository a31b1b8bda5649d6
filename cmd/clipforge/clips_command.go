package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"clipforge/internal/services/captioner"
	"clipforge/internal/store"
)

func newClipsCommand(ctx *commandContext) *cobra.Command {
	var episodeID int64

	cmd := &cobra.Command{
		Use:   "clips",
		Short: "List materialized clips",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				var clips []*store.Clip
				var err error
				if episodeID > 0 {
					clips, err = st.ListClipsByEpisode(cmd.Context(), episodeID)
				} else {
					clips, err = st.ListClips(cmd.Context())
				}
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(clips) == 0 {
					fmt.Fprintln(out, "No clips found.")
					return nil
				}

				rows := make([][]string, 0, len(clips))
				for _, clip := range clips {
					rows = append(rows, []string{
						strconv.FormatInt(clip.ID, 10),
						strconv.FormatInt(clip.EpisodeID, 10),
						fmt.Sprintf("%s - %s",
							captioner.FormatTimestamp(clip.StartTime),
							captioner.FormatTimestamp(clip.EndTime)),
						fmt.Sprintf("%.2f", clip.Score),
						string(clip.Status),
						truncateText(clip.Title, 40),
					})
				}

				fmt.Fprintln(out, renderTable(out,
					[]string{"ID", "Episode", "Range", "Score", "Status", "Title"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignLeft, alignRight, alignLeft, alignLeft}))
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&episodeID, "episode", 0, "Only list clips belonging to this episode")
	return cmd
}
