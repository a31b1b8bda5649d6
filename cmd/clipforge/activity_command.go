package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipforge/internal/store"
)

func newActivityCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent pipeline and worker activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				entries, err := st.ListActivity(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "No activity recorded.")
					return nil
				}

				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					detail := entry.Details
					if entry.ErrorMessage != "" {
						detail = fmt.Sprintf("%s: %s", detail, truncateText(entry.ErrorMessage, 60))
					}
					rows = append(rows, []string{
						formatLocalTime(entry.CreatedAt),
						entry.Action,
						string(entry.Status),
						detail,
					})
				}

				fmt.Fprintln(out, renderTable(out,
					[]string{"Time", "Action", "Status", "Details"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft}))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of entries to show")
	return cmd
}
