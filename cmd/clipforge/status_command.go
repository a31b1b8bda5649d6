package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"clipforge/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show database counters and the store location",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				stats, err := st.Stats(cmd.Context())
				if err != nil {
					return err
				}

				rows := [][]string{
					{"Episodes", strconv.FormatInt(stats.Episodes, 10)},
					{"Clips ready", strconv.FormatInt(stats.ClipsReady, 10)},
					{"Clips published", strconv.FormatInt(stats.ClipsPublished, 10)},
					{"Uploads scheduled", strconv.FormatInt(stats.UploadsScheduled, 10)},
					{"Uploads completed", strconv.FormatInt(stats.UploadsUploaded, 10)},
					{"Uploads failed", strconv.FormatInt(stats.UploadsFailed, 10)},
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable(out,
					[]string{"Metric", "Count"},
					rows,
					[]columnAlignment{alignLeft, alignRight}))
				fmt.Fprintf(out, "Database: %s\n", st.Path())
				return nil
			})
		},
	}
}
