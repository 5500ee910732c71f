package segment

import (
	"context"
	"log/slog"

	"scribe/internal/logging"
	"scribe/internal/media/ffmpeg"
	"scribe/internal/media/ffprobe"
)

// Prober reports an audio file's duration in seconds. Implementations return
// 0 when the duration cannot be determined; duration informs splitting
// decisions and is never safety-critical.
type Prober interface {
	Duration(ctx context.Context, path string) float64
}

// MediaProber measures duration with ffprobe and falls back to a full ffmpeg
// decode when the container metadata is missing or unreadable.
type MediaProber struct {
	ffprobeBinary string
	tool          *ffmpeg.Tool
	logger        *slog.Logger
}

// NewMediaProber constructs a MediaProber. A nil logger disables logging.
func NewMediaProber(ffprobeBinary string, tool *ffmpeg.Tool, logger *slog.Logger) *MediaProber {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &MediaProber{ffprobeBinary: ffprobeBinary, tool: tool, logger: logger}
}

// Duration returns the audio duration in seconds, or 0 when both the
// metadata probe and the decode fallback fail.
func (p *MediaProber) Duration(ctx context.Context, path string) float64 {
	result, err := ffprobe.Inspect(ctx, p.ffprobeBinary, path)
	if err == nil {
		if duration := result.DurationSeconds(); duration > 0 {
			return duration
		}
	} else {
		p.logger.Debug("metadata probe failed, decoding for duration",
			logging.String("path", path),
			logging.Error(err),
		)
	}

	duration, err := p.tool.DecodeDurationSeconds(ctx, path)
	if err != nil {
		p.logger.Warn("duration unavailable",
			logging.String("path", path),
			logging.Error(err),
		)
		return 0
	}
	return duration
}
