package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"clipforge/internal/scheduler"
	"clipforge/internal/services/youtube"
	"clipforge/internal/store"
)

func newWorkerCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the upload worker until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(cfg.YouTube.ClientID) == "" ||
				strings.TrimSpace(cfg.YouTube.ClientSecret) == "" ||
				strings.TrimSpace(cfg.YouTube.RefreshToken) == "" {
				return errors.New("youtube credentials are required to run the worker (client_id, client_secret, refresh_token)")
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return ctx.withStore(func(st *store.Store) error {
				publisher := youtube.NewClient(youtube.Config{
					ClientID:      cfg.YouTube.ClientID,
					ClientSecret:  cfg.YouTube.ClientSecret,
					RefreshToken:  cfg.YouTube.RefreshToken,
					CategoryID:    cfg.YouTube.CategoryID,
					PrivacyStatus: cfg.YouTube.PrivacyStatus,
				}, youtube.WithLogger(logger))

				worker := scheduler.NewWorker(cfg, st, publisher, logger)
				err := worker.Run(signalCtx)
				if errors.Is(err, context.Canceled) {
					fmt.Fprintln(cmd.OutOrStdout(), "Worker stopped")
					return nil
				}
				return err
			})
		},
	}
}
