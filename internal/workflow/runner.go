package workflow

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"scribe/internal/config"
	"scribe/internal/fileutil"
	"scribe/internal/logging"
	"scribe/internal/notifications"
	"scribe/internal/prompts"
	"scribe/internal/segment"
	"scribe/internal/services"
	"scribe/internal/source"
	"scribe/internal/workspace"
)

// Stage names used for logging context throughout a run.
const (
	StageAcquire    = "acquire"
	StageSegment    = "segment"
	StageTranscribe = "transcribe"
	StageFormat     = "format"
	StageSummarize  = "summarize"
	StageCleanup    = "cleanup"
)

const (
	defaultConcurrency = 3
	staleSessionAge    = 24 * time.Hour
)

// Acquirer resolves user input into a local MP3 inside destDir.
type Acquirer interface {
	Acquire(ctx context.Context, input, destDir string) (*source.Result, error)
}

// Splitter produces playable segments from the prepared audio file.
type Splitter interface {
	Split(ctx context.Context, sourcePath, destDir string) ([]segment.Segment, error)
}

// Transcriber covers the three model operations a run can perform.
type Transcriber interface {
	TranscribeAudio(ctx context.Context, audioPath, prompt string) (string, error)
	FormatText(ctx context.Context, rawText, prompt string) (string, error)
	SummarizeText(ctx context.Context, text, prompt string) (string, error)
}

// Options selects which post-processing passes run and how many segments
// are transcribed at once.
type Options struct {
	// SummaryOnly skips the formatting pass.
	SummaryOnly bool
	// FormatOnly skips the summary pass.
	FormatOnly bool
	// KeepAudioDir, when set, receives a copy of the prepared MP3 before
	// the session directory is removed.
	KeepAudioDir string
	// Concurrency bounds simultaneous segment transcriptions. Values
	// below one fall back to the default.
	Concurrency int
}

// Result captures everything a finished run produced.
type Result struct {
	Input          string
	Kind           source.Kind
	Meta           source.Metadata
	RawText        string
	FormattedText  string
	SummaryText    string
	AudioSeconds   float64
	SegmentCount   int
	ProcessingTime time.Duration
	KeptAudioPath  string
	CreatedAt      time.Time
}

// Runner drives one transcription pipeline end to end.
type Runner struct {
	cfg         *config.Config
	acquirer    Acquirer
	splitter    Splitter
	transcriber Transcriber
	prompts     *prompts.Store
	notifier    notifications.Service
	logger      *slog.Logger
	opts        Options
}

// NewRunner wires a Runner from its collaborators. A nil notifier is
// replaced with a no-op service and a nil logger with a no-op logger.
func NewRunner(
	cfg *config.Config,
	acquirer Acquirer,
	splitter Splitter,
	transcriber Transcriber,
	promptStore *prompts.Store,
	notifier notifications.Service,
	logger *slog.Logger,
	opts Options,
) *Runner {
	if notifier == nil {
		notifier = notifications.NewService(&config.Config{})
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = defaultConcurrency
	}
	return &Runner{
		cfg:         cfg,
		acquirer:    acquirer,
		splitter:    splitter,
		transcriber: transcriber,
		prompts:     promptStore,
		notifier:    notifier,
		logger:      logging.NewComponentLogger(logger, "workflow"),
		opts:        opts,
	}
}

// Run executes the pipeline for one input. The returned Result is non-nil
// only on success; the session directory is cleaned up in every case.
func (r *Runner) Run(ctx context.Context, input string) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, r.logger)

	input = strings.TrimSpace(input)
	if input == "" {
		return nil, services.Wrap(services.ErrValidation, "workflow", "run", "empty input", nil)
	}

	kind := source.Classify(input)
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("input", input),
		logging.String("kind", kind.String()),
	)

	if stale := workspace.CleanStale(r.cfg.Paths.TempDir, staleSessionAge, r.logger); len(stale.Removed) > 0 {
		logger.Debug("removed stale sessions", logging.Int("count", len(stale.Removed)))
	}

	session, err := workspace.NewSession(r.cfg.Paths.TempDir, r.logger)
	if err != nil {
		return nil, r.fail(ctx, logger, input, err)
	}
	defer session.Cleanup()

	if err := r.notifier.NotifyRunStarted(ctx, input); err != nil {
		logger.Warn("start notification failed", logging.Error(err))
	}

	result, err := r.execute(ctx, logger, session, input, kind)
	if err != nil {
		title := input
		if result != nil && result.Meta.DisplayTitle() != "" {
			title = result.Meta.DisplayTitle()
		}
		return nil, r.fail(ctx, logger, title, err)
	}

	result.ProcessingTime = time.Since(start)
	logger.Info("run completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("segments", result.SegmentCount),
		logging.Float64("audio_seconds", result.AudioSeconds),
		logging.Duration("elapsed", result.ProcessingTime),
	)
	if err := r.notifier.NotifyRunCompleted(ctx, result.Meta.DisplayTitle(), result.SegmentCount, result.ProcessingTime); err != nil {
		logger.Warn("completion notification failed", logging.Error(err))
	}
	return result, nil
}

func (r *Runner) execute(ctx context.Context, logger *slog.Logger, session *workspace.Session, input string, kind source.Kind) (*Result, error) {
	result := &Result{Input: input, Kind: kind, CreatedAt: time.Now()}

	acquireCtx := services.WithStage(ctx, StageAcquire)
	acquired, err := r.acquirer.Acquire(acquireCtx, input, session.Root())
	if err != nil {
		return result, err
	}
	result.Kind = acquired.Kind
	result.Meta = acquired.Meta
	logger.Info("audio ready",
		logging.String(logging.FieldStage, StageAcquire),
		logging.String("title", acquired.Meta.DisplayTitle()),
		logging.String("path", filepath.Base(acquired.Path)),
	)

	segmentCtx := services.WithStage(ctx, StageSegment)
	segments, err := r.splitter.Split(segmentCtx, acquired.Path, session.Path("segments"))
	if err != nil {
		return result, err
	}
	result.SegmentCount = len(segments)
	if len(segments) > 0 {
		result.AudioSeconds = segments[len(segments)-1].End
	}
	logger.Info("audio segmented",
		logging.String(logging.FieldStage, StageSegment),
		logging.Int("segments", len(segments)),
		logging.Float64("audio_seconds", result.AudioSeconds),
	)

	raw, err := r.transcribeAll(services.WithStage(ctx, StageTranscribe), logger, segments)
	if err != nil {
		return result, err
	}
	result.RawText = raw

	if !r.opts.SummaryOnly && strings.TrimSpace(raw) != "" {
		formatted, err := r.runTextPass(services.WithStage(ctx, StageFormat), logger, StageFormat, prompts.Format, raw, r.transcriber.FormatText)
		if err != nil {
			return result, err
		}
		result.FormattedText = formatted
	}

	if !r.opts.FormatOnly {
		text := result.FormattedText
		if strings.TrimSpace(text) == "" {
			text = raw
		}
		if strings.TrimSpace(text) != "" {
			summary, err := r.runTextPass(services.WithStage(ctx, StageSummarize), logger, StageSummarize, prompts.Summarize, text, r.transcriber.SummarizeText)
			if err != nil {
				return result, err
			}
			result.SummaryText = summary
		}
	}

	if r.opts.KeepAudioDir != "" {
		kept := filepath.Join(r.opts.KeepAudioDir, result.Meta.SafeFilename()+".mp3")
		if err := fileutil.CopyFile(acquired.Path, kept); err != nil {
			return result, services.Wrap(services.ErrProcessing, "workflow", "keep audio", "copy prepared audio", err)
		}
		result.KeptAudioPath = kept
	}

	return result, nil
}

// transcribeAll runs the model over every segment with bounded concurrency
// and joins the pieces in segment order. The first error cancels the
// remaining work.
func (r *Runner) transcribeAll(ctx context.Context, logger *slog.Logger, segments []segment.Segment) (string, error) {
	if len(segments) == 0 {
		return "", nil
	}
	prompt, err := r.prompts.Load(prompts.Transcribe)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	progress := newProgress(logger, StageTranscribe, len(segments))
	defer progress.stop()

	texts := make([]string, len(segments))
	errs := make([]error, len(segments))
	sem := make(chan struct{}, r.opts.Concurrency)
	var wg sync.WaitGroup
	for i, seg := range segments {
		wg.Add(1)
		go func(i int, seg segment.Segment) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				errs[i] = ctx.Err()
				return
			}
			text, err := r.transcriber.TranscribeAudio(ctx, seg.Path, prompt)
			if err != nil {
				errs[i] = err
				cancel()
				return
			}
			texts[i] = text
			progress.advance()
			logger.Debug("segment transcribed",
				logging.Int(logging.FieldSegment, seg.Index),
				logging.Float64("start_seconds", seg.Start),
				logging.Float64("end_seconds", seg.End),
			)
		}(i, seg)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil && !errors.Is(err, context.Canceled) {
			return "", err
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return strings.Join(texts, "\n\n"), nil
}

func (r *Runner) runTextPass(
	ctx context.Context,
	logger *slog.Logger,
	stage, promptName, text string,
	op func(context.Context, string, string) (string, error),
) (string, error) {
	prompt, err := r.prompts.Load(promptName)
	if err != nil {
		return "", err
	}
	started := time.Now()
	out, err := op(ctx, text, prompt)
	if err != nil {
		return "", err
	}
	logger.Info("text pass completed",
		logging.String(logging.FieldStage, stage),
		logging.Duration("elapsed", time.Since(started)),
		logging.Int("chars", len(out)),
	)
	return out, nil
}

func (r *Runner) fail(ctx context.Context, logger *slog.Logger, title string, err error) error {
	logger.Error("run failed",
		logging.String(logging.FieldEventType, "run_failed"),
		logging.Error(err),
	)
	if nerr := r.notifier.NotifyRunFailed(ctx, title, err); nerr != nil {
		logger.Warn("failure notification failed", logging.Error(nerr))
	}
	return err
}
