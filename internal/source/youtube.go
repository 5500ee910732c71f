package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"scribe/internal/logging"
	"scribe/internal/services"
)

// Downloads present a regular browser profile since anonymous clients are
// frequently challenged.
const (
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	youtubeReferer   = "https://www.youtube.com/"
)

// downloadExtensions lists audio container extensions bestaudio may produce,
// in probe order.
var downloadExtensions = []string{"webm", "m4a", "mp3", "wav", "opus"}

type videoInfo struct {
	Title    string  `json:"title"`
	Uploader string  `json:"uploader"`
	Duration float64 `json:"duration"`
}

func (a *Acquirer) acquireYouTube(ctx context.Context, url, destDir string) (*Result, error) {
	a.logger.Info("fetching video metadata", logging.String("url", url))

	info, err := a.fetchVideoInfo(ctx, url)
	if err != nil {
		return nil, err
	}
	a.logger.Info("video metadata fetched",
		logging.String("title", info.Title),
		logging.String("uploader", info.Uploader),
		logging.Float64("duration_seconds", info.Duration),
	)

	downloaded, err := a.download(ctx, url, destDir)
	if err != nil {
		return nil, err
	}

	path, err := a.ensureMP3(ctx, downloaded, destDir)
	if err != nil {
		return nil, err
	}
	if path != downloaded {
		if err := os.Remove(downloaded); err != nil {
			a.logger.Warn("failed to remove pre-conversion download",
				logging.String("path", downloaded),
				logging.Error(err),
			)
		}
	}

	meta := Metadata{
		Title:           info.Title,
		Uploader:        info.Uploader,
		DurationSeconds: info.Duration,
		URL:             url,
	}
	return &Result{Path: path, Kind: KindRemoteURL, Meta: meta}, nil
}

func (a *Acquirer) fetchVideoInfo(ctx context.Context, url string) (videoInfo, error) {
	args := []string{
		"--dump-json",
		"--no-playlist",
		"--no-warnings",
		"--user-agent", browserUserAgent,
		"--referer", youtubeReferer,
		url,
	}
	output, err := a.run(ctx, a.ytdlpBinary, args...)
	if err != nil {
		return videoInfo{}, classifyDownloadError("metadata", err, string(output))
	}
	var info videoInfo
	if err := json.Unmarshal(output, &info); err != nil {
		return videoInfo{}, services.Wrap(services.ErrProcessing, "source", "metadata",
			"could not parse video metadata", err)
	}
	return info, nil
}

func (a *Acquirer) download(ctx context.Context, url, destDir string) (string, error) {
	template := filepath.Join(destDir, "youtube_audio.%(ext)s")
	args := []string{
		"-f", "bestaudio/best",
		"--no-playlist",
		"--quiet",
		"--no-warnings",
		"--user-agent", browserUserAgent,
		"--referer", youtubeReferer,
		"--socket-timeout", "30",
		"--retries", "3",
		"-o", template,
		url,
	}
	output, err := a.run(ctx, a.ytdlpBinary, args...)
	if err != nil {
		return "", classifyDownloadError("download", err, string(output))
	}

	for _, ext := range downloadExtensions {
		candidate := filepath.Join(destDir, "youtube_audio."+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", services.Wrap(services.ErrProcessing, "source", "download",
		"downloaded audio file not found", nil)
}

// classifyDownloadError maps yt-dlp failures onto user-actionable messages.
// The tool reports restriction causes only in its stderr text, so the
// classification happens here at the boundary and nowhere else.
func classifyDownloadError(operation string, err error, output string) error {
	message := "YouTube " + operation + " failed"
	switch {
	case strings.Contains(output, "Sign in to confirm you're not a bot"):
		message = "YouTube is challenging automated access; wait a while or try a different video"
	case strings.Contains(output, "Sign in to confirm your age"):
		message = "video is age-restricted and cannot be processed"
	case strings.Contains(output, "Private video"):
		message = "video is private; use a public video URL"
	case strings.Contains(output, "Video unavailable"), strings.Contains(output, "This video is unavailable"):
		message = "video is unavailable; it may be deleted, private, or region-locked"
	}
	trimmed := strings.TrimSpace(output)
	if trimmed != "" {
		err = fmt.Errorf("%w: %s", err, trimmed)
	}
	return services.Wrap(services.ErrProcessing, "source", operation, message, err)
}
