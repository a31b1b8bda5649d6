package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"clipforge/internal/detect"
	"clipforge/internal/media"
	"clipforge/internal/pipeline"
	"clipforge/internal/scheduler"
	"clipforge/internal/services/captioner"
	"clipforge/internal/services/whisper"
	"clipforge/internal/store"
	"clipforge/internal/thumbnail"
)

var episodeFileExtensions = map[string]struct{}{
	".mp3": {},
	".m4a": {},
	".wav": {},
	".mp4": {},
	".mov": {},
	".mkv": {},
}

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var topClips int
	var atFlags []string
	var every time.Duration

	cmd := &cobra.Command{
		Use:   "process <path>",
		Short: "Transcribe an episode and materialize its best clips",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			info, err := os.Stat(absPath)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("file does not exist: %s", absPath)
				}
				return fmt.Errorf("inspect file: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory", absPath)
			}
			ext := strings.ToLower(filepath.Ext(info.Name()))
			if _, ok := episodeFileExtensions[ext]; !ok {
				return fmt.Errorf("unsupported file extension %q", ext)
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(cfg.OpenAI.APIKey) == "" {
				return errors.New("openai.api_key is required to process episodes (set OPENAI_API_KEY or edit the config)")
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			top := topClips
			if top <= 0 {
				top = cfg.Detection.TopClips
			}

			return ctx.withStore(func(st *store.Store) error {
				captionClient := captioner.NewClient(captioner.Config{
					APIKey:         cfg.OpenAI.APIKey,
					BaseURL:        cfg.OpenAI.BaseURL,
					Model:          cfg.OpenAI.ChatModel,
					TimeoutSeconds: cfg.OpenAI.TimeoutSeconds,
				}, captioner.WithLogger(logger))

				detectOpts := []detect.Option{detect.WithLogger(logger)}
				if cfg.Detection.RefineWithLLM {
					detectOpts = append(detectOpts, detect.WithRefiner(captionClient))
				}

				pipe := pipeline.New(cfg, pipeline.Deps{
					Store: st,
					Transcriber: whisper.NewClient(whisper.Config{
						APIKey:         cfg.OpenAI.APIKey,
						BaseURL:        cfg.OpenAI.BaseURL,
						Model:          cfg.OpenAI.WhisperModel,
						TimeoutSeconds: cfg.OpenAI.TimeoutSeconds,
					}),
					Detector:    detect.NewDetector(detectOpts...),
					Captioner:   captionClient,
					Renderer:    media.NewRenderer(cfg, logger),
					Thumbnailer: thumbnail.NewCompositor(cfg, logger),
					Logger:      logger,
				})

				result, err := pipe.ProcessEpisode(cmd.Context(), absPath, filepath.Base(absPath), top)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Episode #%d processed: %d clips generated\n", result.EpisodeID, result.ClipsGenerated)
				for _, id := range result.ClipIDs {
					clip, err := st.GetClip(cmd.Context(), id)
					if err != nil {
						continue
					}
					fmt.Fprintf(out, "  clip #%d  %s - %s  score %.2f  %s\n",
						clip.ID,
						captioner.FormatTimestamp(clip.StartTime),
						captioner.FormatTimestamp(clip.EndTime),
						clip.Score,
						clip.Title)
				}
				for _, message := range result.Errors {
					fmt.Fprintf(out, "  warning: %s\n", message)
				}
				if len(result.ClipIDs) == 0 {
					return nil
				}

				if len(atFlags) == 0 {
					fmt.Fprintln(out, "Run `clipforge schedule` to queue clips for upload.")
					return nil
				}

				now := time.Now()
				times := make([]time.Time, 0, len(result.ClipIDs))
				for _, value := range atFlags {
					when, err := parseScheduleTime(value, now)
					if err != nil {
						return err
					}
					times = append(times, when)
				}
				if every > 0 {
					for len(times) < len(result.ClipIDs) {
						times = append(times, times[len(times)-1].Add(every))
					}
				}

				sched := scheduler.New(cfg, st, logger)
				if err := sched.ScheduleForUpload(cmd.Context(), result.ClipIDs, times); err != nil {
					return err
				}
				scheduled := len(result.ClipIDs)
				if len(times) < scheduled {
					scheduled = len(times)
				}
				fmt.Fprintf(out, "Scheduled %d clips for upload.\n", scheduled)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&topClips, "top", 0, "Maximum clips to keep (defaults to detection.top_clips)")
	cmd.Flags().StringArrayVar(&atFlags, "at", nil, "Schedule generated clips at these times (repeatable, same formats as `schedule --at`)")
	cmd.Flags().DurationVar(&every, "every", 0, "Spacing used to extend the last --at time across remaining clips")
	return cmd
}
