package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"clipforge/internal/store"
)

func newUploadsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "uploads",
		Short: "List scheduled and completed uploads",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				uploads, err := st.ListUploads(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(uploads) == 0 {
					fmt.Fprintln(out, "No uploads scheduled.")
					return nil
				}

				rows := make([][]string, 0, len(uploads))
				for _, upload := range uploads {
					detail := upload.URL
					if upload.Status == store.UploadFailed {
						detail = truncateText(upload.ErrorMessage, 60)
					}
					rows = append(rows, []string{
						strconv.FormatInt(upload.ID, 10),
						strconv.FormatInt(upload.ClipID, 10),
						upload.Platform,
						formatLocalTime(upload.ScheduledTime),
						string(upload.Status),
						detail,
					})
				}

				fmt.Fprintln(out, renderTable(out,
					[]string{"ID", "Clip", "Platform", "Scheduled", "Status", "URL / Error"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignLeft, alignLeft}))
				return nil
			})
		},
	}
}
