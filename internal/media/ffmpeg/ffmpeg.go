package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// Runner executes a command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func defaultRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	return cmd.CombinedOutput()
}

// Option configures the Tool.
type Option func(*Tool)

// WithRunner overrides command execution, primarily for tests.
func WithRunner(run Runner) Option {
	return func(t *Tool) {
		if run != nil {
			t.run = run
		}
	}
}

// Tool wraps the ffmpeg command-line binary.
type Tool struct {
	binary string
	run    Runner
}

// New constructs a Tool for the given binary name or path. An empty binary
// falls back to "ffmpeg" resolved via PATH.
func New(binary string, opts ...Option) *Tool {
	tool := &Tool{binary: strings.TrimSpace(binary), run: defaultRunner}
	if tool.binary == "" {
		tool.binary = "ffmpeg"
	}
	for _, opt := range opts {
		opt(tool)
	}
	return tool
}

// Convert transcodes the source file to MP3 at dest.
func (t *Tool) Convert(ctx context.Context, source, dest string) error {
	if strings.TrimSpace(source) == "" {
		return errors.New("ffmpeg convert: source path required")
	}
	if strings.TrimSpace(dest) == "" {
		return errors.New("ffmpeg convert: destination path required")
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-acodec", "libmp3lame",
		dest,
	}
	if output, err := t.run(ctx, t.binary, args...); err != nil {
		return fmt.Errorf("ffmpeg convert: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// ExportSegment copies the time range [startSec, startSec+durationSec) of the
// source into dest without re-encoding.
func (t *Tool) ExportSegment(ctx context.Context, source string, startSec, durationSec float64, dest string) error {
	if strings.TrimSpace(source) == "" {
		return errors.New("ffmpeg export: source path required")
	}
	if durationSec <= 0 {
		return fmt.Errorf("ffmpeg export: invalid duration %v", durationSec)
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", formatSeconds(startSec),
		"-t", formatSeconds(durationSec),
		"-i", source,
		"-acodec", "copy",
		dest,
	}
	if output, err := t.run(ctx, t.binary, args...); err != nil {
		return fmt.Errorf("ffmpeg export segment: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

var decodeTimePattern = regexp.MustCompile(`time=(\d+):(\d{2}):(\d{2}(?:\.\d+)?)`)

// DecodeDurationSeconds measures the playable duration of the source by
// decoding it to a null muxer and reading the final progress timestamp. This
// is slower than probing but works on files with damaged or missing headers.
func (t *Tool) DecodeDurationSeconds(ctx context.Context, source string) (float64, error) {
	if strings.TrimSpace(source) == "" {
		return 0, errors.New("ffmpeg duration: source path required")
	}
	args := []string{
		"-hide_banner",
		"-i", source,
		"-f", "null",
		"-",
	}
	output, err := t.run(ctx, t.binary, args...)
	if err != nil {
		return 0, fmt.Errorf("ffmpeg duration: %w: %s", err, strings.TrimSpace(string(output)))
	}
	matches := decodeTimePattern.FindAllStringSubmatch(string(output), -1)
	if len(matches) == 0 {
		return 0, errors.New("ffmpeg duration: no progress timestamp in output")
	}
	last := matches[len(matches)-1]
	hours, _ := strconv.ParseFloat(last[1], 64)
	minutes, _ := strconv.ParseFloat(last[2], 64)
	seconds, _ := strconv.ParseFloat(last[3], 64)
	return hours*3600 + minutes*60 + seconds, nil
}

// Silence is a detected quiet interval in seconds from the start of the file.
type Silence struct {
	Start float64
	End   float64
}

// Duration returns the length of the silence in seconds.
func (s Silence) Duration() float64 {
	return s.End - s.Start
}

var (
	silenceStartPattern = regexp.MustCompile(`silence_start:\s*(-?\d+(?:\.\d+)?)`)
	silenceEndPattern   = regexp.MustCompile(`silence_end:\s*(-?\d+(?:\.\d+)?)`)
)

// DetectSilence decodes the source through the silencedetect filter and
// returns the quiet intervals lasting at least minSilenceSec below
// thresholdDB. A silence that runs to the end of the stream without a closing
// marker is dropped since its end is unknown at this layer.
func (t *Tool) DetectSilence(ctx context.Context, source string, minSilenceSec, thresholdDB float64) ([]Silence, error) {
	if strings.TrimSpace(source) == "" {
		return nil, errors.New("ffmpeg silencedetect: source path required")
	}
	if minSilenceSec <= 0 {
		return nil, fmt.Errorf("ffmpeg silencedetect: invalid minimum %v", minSilenceSec)
	}
	filter := fmt.Sprintf("silencedetect=noise=%sdB:d=%s", formatSeconds(thresholdDB), formatSeconds(minSilenceSec))
	args := []string{
		"-hide_banner",
		"-i", source,
		"-af", filter,
		"-f", "null",
		"-",
	}
	output, err := t.run(ctx, t.binary, args...)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg silencedetect: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return parseSilences(string(output)), nil
}

func parseSilences(output string) []Silence {
	var silences []Silence
	var pending float64
	open := false
	for _, line := range strings.Split(output, "\n") {
		if match := silenceStartPattern.FindStringSubmatch(line); match != nil {
			if value, err := strconv.ParseFloat(match[1], 64); err == nil {
				pending = value
				open = true
			}
			continue
		}
		if match := silenceEndPattern.FindStringSubmatch(line); match != nil && open {
			if value, err := strconv.ParseFloat(match[1], 64); err == nil && value > pending {
				silences = append(silences, Silence{Start: pending, End: value})
			}
			open = false
		}
	}
	return silences
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
