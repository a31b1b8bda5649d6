package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"clipforge/internal/scheduler"
	"clipforge/internal/store"
)

var scheduleTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

func newScheduleCommand(ctx *commandContext) *cobra.Command {
	var atFlags []string
	var every time.Duration

	cmd := &cobra.Command{
		Use:   "schedule <clip-id>...",
		Short: "Queue ready clips for upload at the given times",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clipIDs, err := parseClipIDs(args)
			if err != nil {
				return err
			}
			if len(atFlags) == 0 {
				return errors.New("at least one --at time is required")
			}

			now := time.Now()
			times := make([]time.Time, 0, len(clipIDs))
			for _, value := range atFlags {
				when, err := parseScheduleTime(value, now)
				if err != nil {
					return err
				}
				times = append(times, when)
			}
			if every > 0 {
				for len(times) < len(clipIDs) {
					times = append(times, times[len(times)-1].Add(every))
				}
			}
			if len(times) < len(clipIDs) {
				return fmt.Errorf("%d clips but only %d times; add --at entries or use --every", len(clipIDs), len(times))
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			return ctx.withStore(func(st *store.Store) error {
				for _, id := range clipIDs {
					clip, err := st.GetClip(cmd.Context(), id)
					if err != nil {
						return fmt.Errorf("clip %d: %w", id, err)
					}
					if clip.Status != store.ClipReady {
						return fmt.Errorf("clip %d is %s, only ready clips can be scheduled", id, clip.Status)
					}
				}

				sched := scheduler.New(cfg, st, logger)
				if err := sched.ScheduleForUpload(cmd.Context(), clipIDs, times); err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				for i, id := range clipIDs {
					fmt.Fprintf(out, "Clip #%d scheduled for %s\n", id, times[i].Format("2006-01-02 15:04:05 MST"))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringArrayVar(&atFlags, "at", nil, "Upload time (RFC3339, \"YYYY-MM-DD HH:MM\", or \"HH:MM\" for the next occurrence); repeatable")
	cmd.Flags().DurationVar(&every, "every", 0, "Spacing used to extend the last --at time when fewer times than clips are given")
	return cmd
}

func parseClipIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid clip id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseScheduleTime accepts absolute timestamps or a bare clock time, which
// resolves to the next occurrence after now.
func parseScheduleTime(value string, now time.Time) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	for _, layout := range scheduleTimeLayouts {
		if when, err := time.ParseInLocation(layout, trimmed, time.Local); err == nil {
			return when, nil
		}
	}
	if clock, err := time.ParseInLocation("15:04", trimmed, time.Local); err == nil {
		when := time.Date(now.Year(), now.Month(), now.Day(), clock.Hour(), clock.Minute(), 0, 0, time.Local)
		if !when.After(now) {
			when = when.Add(24 * time.Hour)
		}
		return when, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", value)
}
