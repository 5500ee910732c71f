package segment

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"scribe/internal/logging"
	"scribe/internal/media/ffmpeg"
	"scribe/internal/services"
)

// Segment is one bounded-duration piece of the source audio. Indices are
// contiguous and start at 0; Path points at a playable file, which is the
// original source when no split was needed.
type Segment struct {
	Index int
	Start float64
	End   float64
	Path  string
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Splitter plans and materializes audio segments.
type Splitter struct {
	tool   *ffmpeg.Tool
	prober Prober
	logger *slog.Logger

	maxSeconds    float64
	minSilenceSec float64
	thresholdDB   float64
}

// NewSplitter constructs a Splitter. maxSeconds caps each segment;
// minSilenceSec and thresholdDB parameterize silence detection.
func NewSplitter(tool *ffmpeg.Tool, prober Prober, maxSeconds, minSilenceSec, thresholdDB float64, logger *slog.Logger) *Splitter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Splitter{
		tool:          tool,
		prober:        prober,
		logger:        logger,
		maxSeconds:    maxSeconds,
		minSilenceSec: minSilenceSec,
		thresholdDB:   thresholdDB,
	}
}

// Split returns the ordered segment list for the source file, exporting each
// piece into destDir. A file no longer than the cap is returned as a single
// segment referencing the source path itself, with nothing exported. Any
// export failure aborts the whole operation; partial segment sets are never
// returned.
func (s *Splitter) Split(ctx context.Context, sourcePath, destDir string) ([]Segment, error) {
	total := s.prober.Duration(ctx, sourcePath)
	s.logger.Info("audio duration measured",
		logging.Float64("seconds", total),
		logging.String("path", sourcePath),
	)

	if total <= s.maxSeconds {
		return []Segment{{Index: 0, Start: 0, End: total, Path: sourcePath}}, nil
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrProcessing, "segment", "export", "create segment directory", err)
	}

	spans := s.plan(ctx, sourcePath, total)
	segments := make([]Segment, 0, len(spans))
	for i, span := range spans {
		dest := filepath.Join(destDir, fmt.Sprintf("segment_%03d.mp3", i))
		if err := s.tool.ExportSegment(ctx, sourcePath, span.Start, span.Duration(), dest); err != nil {
			return nil, services.Wrap(services.ErrProcessing, "segment", "export",
				fmt.Sprintf("export segment %d [%.1fs, %.1fs]", i, span.Start, span.End), err)
		}
		segments = append(segments, Segment{Index: i, Start: span.Start, End: span.End, Path: dest})
	}
	s.logger.Info("audio split complete",
		logging.Int("segments", len(segments)),
		logging.Float64("max_seconds", s.maxSeconds),
	)
	return segments, nil
}

func (s *Splitter) plan(ctx context.Context, sourcePath string, total float64) []Span {
	if total > s.maxSeconds*silenceSkipFactor {
		s.logger.Info("long input, skipping silence analysis")
		return PlanFixed(total, s.maxSeconds)
	}

	silences, err := s.tool.DetectSilence(ctx, sourcePath, s.minSilenceSec, s.thresholdDB)
	if err != nil {
		s.logger.Warn("silence detection failed, using fixed intervals", logging.Error(err))
		return PlanFixed(total, s.maxSeconds)
	}
	if spans := PlanSilence(total, s.maxSeconds, silences); spans != nil {
		s.logger.Info("silence-aware plan selected",
			logging.Int("silences", len(silences)),
			logging.Int("spans", len(spans)),
		)
		return spans
	}
	s.logger.Info("no usable silence found, using fixed intervals")
	return PlanFixed(total, s.maxSeconds)
}
