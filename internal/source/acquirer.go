package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"scribe/internal/logging"
	"scribe/internal/media/ffmpeg"
	"scribe/internal/services"
)

// supportedExtensions is the local-input allowlist. Everything is converted
// to MP3 before segmentation.
var supportedExtensions = map[string]struct{}{
	".mp3":  {},
	".wav":  {},
	".m4a":  {},
	".aac":  {},
	".flac": {},
	".ogg":  {},
}

// SupportedExtensions returns the allowlist in sorted order for messages.
func SupportedExtensions() []string {
	extensions := make([]string, 0, len(supportedExtensions))
	for ext := range supportedExtensions {
		extensions = append(extensions, ext)
	}
	sort.Strings(extensions)
	return extensions
}

// Runner executes an external command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func defaultRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	return cmd.CombinedOutput()
}

// Option configures the Acquirer.
type Option func(*Acquirer)

// WithRunner overrides yt-dlp execution, primarily for tests.
func WithRunner(run Runner) Option {
	return func(a *Acquirer) {
		if run != nil {
			a.run = run
		}
	}
}

// Acquirer turns an input string into a local MP3 plus metadata.
type Acquirer struct {
	ytdlpBinary string
	tool        *ffmpeg.Tool
	logger      *slog.Logger
	run         Runner
}

// New constructs an Acquirer. An empty binary falls back to "yt-dlp"
// resolved via PATH.
func New(ytdlpBinary string, tool *ffmpeg.Tool, logger *slog.Logger, opts ...Option) *Acquirer {
	if logger == nil {
		logger = logging.NewNop()
	}
	acquirer := &Acquirer{
		ytdlpBinary: strings.TrimSpace(ytdlpBinary),
		tool:        tool,
		logger:      logger,
		run:         defaultRunner,
	}
	if acquirer.ytdlpBinary == "" {
		acquirer.ytdlpBinary = "yt-dlp"
	}
	for _, opt := range opts {
		opt(acquirer)
	}
	return acquirer
}

// Result is the acquired local audio plus its provenance.
type Result struct {
	Path string
	Kind Kind
	Meta Metadata
}

// Acquire resolves the input into a local MP3 beneath destDir. Local files
// are validated and converted when needed; YouTube URLs are downloaded and
// converted. The returned path may be the input itself when the input is
// already a local MP3.
func (a *Acquirer) Acquire(ctx context.Context, input, destDir string) (*Result, error) {
	if Classify(input) == KindRemoteURL {
		return a.acquireYouTube(ctx, strings.TrimSpace(input), destDir)
	}
	return a.acquireLocal(ctx, input, destDir)
}

func (a *Acquirer) acquireLocal(ctx context.Context, input, destDir string) (*Result, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "source", "stat",
			fmt.Sprintf("file not found: %s", input), err)
	}
	if !info.Mode().IsRegular() {
		return nil, services.Wrap(services.ErrValidation, "source", "stat",
			fmt.Sprintf("not a regular file: %s", input), nil)
	}
	ext := strings.ToLower(filepath.Ext(input))
	if _, ok := supportedExtensions[ext]; !ok {
		return nil, services.Wrap(services.ErrValidation, "source", "extension",
			fmt.Sprintf("unsupported audio format %q (supported: %s)", ext, strings.Join(SupportedExtensions(), ", ")), nil)
	}

	path, err := a.ensureMP3(ctx, input, destDir)
	if err != nil {
		return nil, err
	}
	a.logger.Info("local file acquired",
		logging.String("path", path),
		logging.Bool("converted", path != input),
	)
	return &Result{Path: path, Kind: KindLocalFile, Meta: metadataFromPath(input)}, nil
}

// ensureMP3 converts the file to MP3 unless it already is one.
func (a *Acquirer) ensureMP3(ctx context.Context, input, destDir string) (string, error) {
	if strings.EqualFold(filepath.Ext(input), ".mp3") {
		return input, nil
	}
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	dest := filepath.Join(destDir, "converted_"+stem+".mp3")
	if err := a.tool.Convert(ctx, input, dest); err != nil {
		return "", services.Wrap(services.ErrProcessing, "source", "convert",
			fmt.Sprintf("audio conversion failed for %s", input), err)
	}
	return dest, nil
}
