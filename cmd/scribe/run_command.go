package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"log/slog"

	"github.com/spf13/cobra"

	"scribe/internal/config"
	"scribe/internal/history"
	"scribe/internal/media/ffmpeg"
	"scribe/internal/notifications"
	"scribe/internal/output"
	"scribe/internal/prompts"
	"scribe/internal/segment"
	"scribe/internal/services/gemini"
	"scribe/internal/source"
	"scribe/internal/workflow"
)

func newRunCommand(cmdCtx *commandContext) *cobra.Command {
	var (
		summaryOnly bool
		formatOnly  bool
		outputDir   string
		keepAudio   bool
		promptsDir  string
		modelFlag   string
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "run <file-or-url>",
		Short: "Transcribe a local audio file or YouTube URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if summaryOnly && formatOnly {
				return fmt.Errorf("--summary-only and --format-only are mutually exclusive")
			}
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			cmdCtx.verbose = verbose
			logger, err := cmdCtx.ensureLogger()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			destDir := strings.TrimSpace(outputDir)
			if destDir == "" {
				destDir = cfg.Paths.OutputDir
			} else if destDir, err = config.ExpandPath(destDir); err != nil {
				return fmt.Errorf("resolve output directory: %w", err)
			}

			client := newGeminiClient(cfg, modelFlag)
			runner := newRunner(cfg, client, logger, workflow.Options{
				SummaryOnly:  summaryOnly,
				FormatOnly:   formatOnly,
				KeepAudioDir: keepAudioDir(keepAudio, destDir),
			}, promptsDir)

			spinner := startSpinner(cmd.ErrOrStderr(), "Processing "+args[0])
			started := time.Now()
			result, runErr := runner.Run(ctx, args[0])
			spinner.stop()

			// Recording uses a fresh context so an interrupted run still
			// lands in history.
			recordErr := recordRun(context.Background(), cfg, client, args[0], destDir, result, runErr, time.Since(started))
			if recordErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not record run history: %v\n", recordErr)
			}
			if runErr != nil {
				return runErr
			}

			files, err := output.Save(destDir, result.Meta.SafeFilename(), output.Texts{
				Raw:       result.RawText,
				Formatted: result.FormattedText,
				Summary:   result.SummaryText,
			})
			if err != nil {
				return err
			}

			printRunSummary(cmd.OutOrStdout(), result, files, client.CostSummary())
			return nil
		},
	}

	cmd.Flags().BoolVar(&summaryOnly, "summary-only", false, "Skip the formatting pass and summarize the raw transcript")
	cmd.Flags().BoolVar(&formatOnly, "format-only", false, "Skip the summary pass")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for transcript files (defaults to the configured output dir)")
	cmd.Flags().BoolVar(&keepAudio, "keep-audio", false, "Copy the prepared MP3 next to the transcripts")
	cmd.Flags().StringVar(&promptsDir, "prompts", "", "Directory with prompt overrides")
	cmd.Flags().StringVar(&modelFlag, "model", "", "Gemini model to use for this run")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level for this run")

	return cmd
}

func newGeminiClient(cfg *config.Config, modelOverride string) *gemini.Client {
	model := strings.TrimSpace(modelOverride)
	if model == "" {
		model = cfg.Gemini.Model
	}
	return gemini.NewClient(gemini.Config{
		APIKey:         cfg.Gemini.APIKey,
		BaseURL:        cfg.Gemini.BaseURL,
		Model:          model,
		RetryCount:     cfg.Gemini.RetryCount,
		RetryDelay:     time.Duration(cfg.Gemini.RetryDelay) * time.Second,
		TimeoutSeconds: cfg.Gemini.TimeoutSeconds,
	})
}

func newRunner(cfg *config.Config, client *gemini.Client, logger *slog.Logger, opts workflow.Options, promptsDir string) *workflow.Runner {
	tool := ffmpeg.New(cfg.FFmpegBinary())
	prober := segment.NewMediaProber(cfg.FFprobeBinary(), tool, logger)
	splitter := segment.NewSplitter(
		tool,
		prober,
		float64(cfg.Audio.MaxSegmentSeconds),
		cfg.Audio.MinSilenceSeconds,
		cfg.Audio.SilenceThresholdDB,
		logger,
	)
	acquirer := source.New(cfg.YtDlpBinary(), tool, logger)
	return workflow.NewRunner(
		cfg,
		acquirer,
		splitter,
		client,
		prompts.NewStore(promptsDir),
		notifications.NewService(cfg),
		logger,
		opts,
	)
}

func keepAudioDir(keep bool, destDir string) string {
	if !keep {
		return ""
	}
	return destDir
}

func recordRun(
	ctx context.Context,
	cfg *config.Config,
	client *gemini.Client,
	input, destDir string,
	result *workflow.Result,
	runErr error,
	elapsed time.Duration,
) error {
	if !cfg.History.Enabled {
		return nil
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	costs := client.CostSummary()
	run := history.Run{
		Input:             input,
		Kind:              source.Classify(input).String(),
		Status:            history.StatusCompleted,
		ProcessingSeconds: elapsed.Seconds(),
		Model:             costs.Model,
		TotalTokens:       costs.TotalTokens,
		InputTokens:       costs.InputTokens,
		OutputTokens:      costs.OutputTokens,
		AudioInputTokens:  costs.AudioInputTokens,
		CostUSD:           costs.CostUSD,
		OutputDir:         destDir,
	}
	if result != nil {
		run.Title = result.Meta.DisplayTitle()
		run.AudioSeconds = result.AudioSeconds
		run.SegmentCount = result.SegmentCount
	}
	if runErr != nil {
		run.Status = history.StatusFailed
		run.ErrorMessage = runErr.Error()
	}
	return store.SaveRun(ctx, &run)
}
