package segment

import (
	"context"
	"errors"
	"testing"

	"scribe/internal/logging"
	"scribe/internal/media/ffmpeg"
)

func TestMediaProberFallsBackToDecode(t *testing.T) {
	tool := ffmpeg.New("ffmpeg", ffmpeg.WithRunner(func(context.Context, string, ...string) ([]byte, error) {
		return []byte("size=N/A time=00:02:05.50 bitrate=N/A"), nil
	}))
	prober := NewMediaProber("/nonexistent/ffprobe", tool, logging.NewNop())

	got := prober.Duration(context.Background(), "in.mp3")
	if got != 125.5 {
		t.Fatalf("expected decode fallback duration 125.5, got %v", got)
	}
}

func TestMediaProberReturnsZeroWhenBothFail(t *testing.T) {
	tool := ffmpeg.New("ffmpeg", ffmpeg.WithRunner(func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("exit status 1")
	}))
	prober := NewMediaProber("/nonexistent/ffprobe", tool, logging.NewNop())

	if got := prober.Duration(context.Background(), "in.mp3"); got != 0 {
		t.Fatalf("expected 0 when probing fails, got %v", got)
	}
}
