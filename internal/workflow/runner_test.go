package workflow

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"scribe/internal/config"
	"scribe/internal/logging"
	"scribe/internal/prompts"
	"scribe/internal/segment"
	"scribe/internal/services"
	"scribe/internal/source"
)

type stubAcquirer struct {
	err      error
	gotInput string
	gotDest  string
}

func (s *stubAcquirer) Acquire(_ context.Context, input, destDir string) (*source.Result, error) {
	s.gotInput = input
	s.gotDest = destDir
	if s.err != nil {
		return nil, s.err
	}
	path := filepath.Join(destDir, "prepared.mp3")
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		return nil, err
	}
	return &source.Result{
		Path: path,
		Kind: source.KindLocalFile,
		Meta: source.Metadata{Title: "team meeting"},
	}, nil
}

type stubSplitter struct {
	err      error
	segments []segment.Segment
}

func (s *stubSplitter) Split(_ context.Context, sourcePath, destDir string) ([]segment.Segment, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.segments != nil {
		return s.segments, nil
	}
	return []segment.Segment{{Index: 0, Start: 0, End: 60, Path: sourcePath}}, nil
}

type stubTranscriber struct {
	mu             sync.Mutex
	transcribe     func(path string) (string, error)
	transcribed    []string
	formatCalls    []string
	summarizeCalls []string
	formatResult   string
	summaryResult  string
}

func (s *stubTranscriber) TranscribeAudio(_ context.Context, audioPath, _ string) (string, error) {
	s.mu.Lock()
	s.transcribed = append(s.transcribed, audioPath)
	s.mu.Unlock()
	if s.transcribe != nil {
		return s.transcribe(audioPath)
	}
	return "text for " + filepath.Base(audioPath), nil
}

func (s *stubTranscriber) FormatText(_ context.Context, rawText, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.formatCalls = append(s.formatCalls, rawText)
	if s.formatResult == "" {
		return "formatted: " + rawText, nil
	}
	return s.formatResult, nil
}

func (s *stubTranscriber) SummarizeText(_ context.Context, text, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summarizeCalls = append(s.summarizeCalls, text)
	if s.summaryResult == "" {
		return "summary: " + text, nil
	}
	return s.summaryResult, nil
}

type recordingNotifier struct {
	mu        sync.Mutex
	started   []string
	completed []string
	failed    []string
}

func (n *recordingNotifier) NotifyRunStarted(_ context.Context, title string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.started = append(n.started, title)
	return nil
}

func (n *recordingNotifier) NotifyRunCompleted(_ context.Context, title string, _ int, _ time.Duration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, title)
	return nil
}

func (n *recordingNotifier) NotifyRunFailed(_ context.Context, title string, _ error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed = append(n.failed, title)
	return nil
}

func (n *recordingNotifier) TestNotification(context.Context) error { return nil }

type runnerFixture struct {
	cfg         *config.Config
	acquirer    *stubAcquirer
	splitter    *stubSplitter
	transcriber *stubTranscriber
	notifier    *recordingNotifier
}

func newFixture(t *testing.T) *runnerFixture {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.TempDir = t.TempDir()
	return &runnerFixture{
		cfg:         &cfg,
		acquirer:    &stubAcquirer{},
		splitter:    &stubSplitter{},
		transcriber: &stubTranscriber{},
		notifier:    &recordingNotifier{},
	}
}

func (f *runnerFixture) runner(opts Options) *Runner {
	return NewRunner(f.cfg, f.acquirer, f.splitter, f.transcriber, prompts.NewStore(""), f.notifier, logging.NewNop(), opts)
}

func sessionDirs(t *testing.T, root string) []string {
	t.Helper()
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), "scribe_") {
			dirs = append(dirs, entry.Name())
		}
	}
	return dirs
}

func TestRunnerProducesAllTextsInSegmentOrder(t *testing.T) {
	f := newFixture(t)
	f.splitter.segments = []segment.Segment{
		{Index: 0, Start: 0, End: 600, Path: "segment_000.mp3"},
		{Index: 1, Start: 600, End: 1200, Path: "segment_001.mp3"},
		{Index: 2, Start: 1200, End: 1500, Path: "segment_002.mp3"},
	}
	// The first segment finishes last; ordering must still follow indices.
	f.transcriber.transcribe = func(path string) (string, error) {
		if path == "segment_000.mp3" {
			time.Sleep(30 * time.Millisecond)
		}
		return "piece " + path, nil
	}

	result, err := f.runner(Options{}).Run(context.Background(), "meeting.mp3")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	wantRaw := "piece segment_000.mp3\n\npiece segment_001.mp3\n\npiece segment_002.mp3"
	if result.RawText != wantRaw {
		t.Fatalf("raw text = %q, want %q", result.RawText, wantRaw)
	}
	if result.FormattedText != "formatted: "+wantRaw {
		t.Errorf("formatted text = %q", result.FormattedText)
	}
	if !strings.HasPrefix(result.SummaryText, "summary: ") {
		t.Errorf("summary text = %q", result.SummaryText)
	}
	if result.SegmentCount != 3 {
		t.Errorf("segment count = %d, want 3", result.SegmentCount)
	}
	if result.AudioSeconds != 1500 {
		t.Errorf("audio seconds = %v, want 1500", result.AudioSeconds)
	}
	if result.ProcessingTime <= 0 {
		t.Errorf("processing time = %v, want > 0", result.ProcessingTime)
	}
	if len(f.notifier.started) != 1 || len(f.notifier.completed) != 1 || len(f.notifier.failed) != 0 {
		t.Errorf("notifications started=%d completed=%d failed=%d", len(f.notifier.started), len(f.notifier.completed), len(f.notifier.failed))
	}
	if dirs := sessionDirs(t, f.cfg.Paths.TempDir); len(dirs) != 0 {
		t.Errorf("session directories left behind: %v", dirs)
	}
}

func TestRunnerSummarizesFormattedText(t *testing.T) {
	f := newFixture(t)
	f.transcriber.formatResult = "polished transcript"

	if _, err := f.runner(Options{}).Run(context.Background(), "talk.mp3"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(f.transcriber.summarizeCalls) != 1 || f.transcriber.summarizeCalls[0] != "polished transcript" {
		t.Fatalf("summarize calls = %v, want the formatted text", f.transcriber.summarizeCalls)
	}
}

func TestRunnerSummaryOnlySkipsFormattingPass(t *testing.T) {
	f := newFixture(t)

	result, err := f.runner(Options{SummaryOnly: true}).Run(context.Background(), "talk.mp3")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(f.transcriber.formatCalls) != 0 {
		t.Errorf("format calls = %v, want none", f.transcriber.formatCalls)
	}
	if result.FormattedText != "" {
		t.Errorf("formatted text = %q, want empty", result.FormattedText)
	}
	if len(f.transcriber.summarizeCalls) != 1 {
		t.Fatalf("summarize calls = %d, want 1", len(f.transcriber.summarizeCalls))
	}
	if f.transcriber.summarizeCalls[0] != result.RawText {
		t.Errorf("summary input = %q, want raw text", f.transcriber.summarizeCalls[0])
	}
}

func TestRunnerFormatOnlySkipsSummaryPass(t *testing.T) {
	f := newFixture(t)

	result, err := f.runner(Options{FormatOnly: true}).Run(context.Background(), "talk.mp3")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(f.transcriber.summarizeCalls) != 0 {
		t.Errorf("summarize calls = %v, want none", f.transcriber.summarizeCalls)
	}
	if result.FormattedText == "" {
		t.Error("formatted text missing")
	}
	if result.SummaryText != "" {
		t.Errorf("summary text = %q, want empty", result.SummaryText)
	}
}

func TestRunnerSkipsPostProcessingWhenTranscriptEmpty(t *testing.T) {
	f := newFixture(t)
	f.transcriber.transcribe = func(string) (string, error) { return "", nil }

	result, err := f.runner(Options{}).Run(context.Background(), "silent.mp3")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(f.transcriber.formatCalls) != 0 || len(f.transcriber.summarizeCalls) != 0 {
		t.Errorf("post-processing ran on empty transcript: format=%d summarize=%d", len(f.transcriber.formatCalls), len(f.transcriber.summarizeCalls))
	}
	if result.FormattedText != "" || result.SummaryText != "" {
		t.Errorf("unexpected texts: formatted=%q summary=%q", result.FormattedText, result.SummaryText)
	}
}

func TestRunnerCleansSessionAndNotifiesOnFailure(t *testing.T) {
	f := newFixture(t)
	f.splitter.err = services.Wrap(services.ErrProcessing, "segment", "split", "boom", nil)

	if _, err := f.runner(Options{}).Run(context.Background(), "talk.mp3"); !errors.Is(err, services.ErrProcessing) {
		t.Fatalf("Run error = %v, want processing error", err)
	}
	if len(f.notifier.failed) != 1 {
		t.Errorf("failure notifications = %d, want 1", len(f.notifier.failed))
	}
	if len(f.notifier.completed) != 0 {
		t.Errorf("completion notifications = %d, want 0", len(f.notifier.completed))
	}
	if dirs := sessionDirs(t, f.cfg.Paths.TempDir); len(dirs) != 0 {
		t.Errorf("session directories left behind: %v", dirs)
	}
}

func TestRunnerStopsAfterFirstTranscriptionError(t *testing.T) {
	f := newFixture(t)
	f.splitter.segments = []segment.Segment{
		{Index: 0, Start: 0, End: 600, Path: "segment_000.mp3"},
		{Index: 1, Start: 600, End: 1200, Path: "segment_001.mp3"},
	}
	wantErr := services.Wrap(services.ErrAPI, "gemini", "transcribe audio", "quota", nil)
	f.transcriber.transcribe = func(path string) (string, error) {
		if path == "segment_000.mp3" {
			return "", wantErr
		}
		return "ok", nil
	}

	if _, err := f.runner(Options{Concurrency: 1}).Run(context.Background(), "talk.mp3"); !errors.Is(err, services.ErrAPI) {
		t.Fatalf("Run error = %v, want API error", err)
	}
	if len(f.transcriber.formatCalls) != 0 {
		t.Errorf("format ran after transcription failure")
	}
}

func TestRunnerKeepsPreparedAudioBeforeCleanup(t *testing.T) {
	f := newFixture(t)
	keepDir := t.TempDir()

	result, err := f.runner(Options{KeepAudioDir: keepDir}).Run(context.Background(), "talk.mp3")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.KeptAudioPath == "" {
		t.Fatal("kept audio path missing")
	}
	if filepath.Dir(result.KeptAudioPath) != keepDir {
		t.Errorf("kept audio path = %q, want inside %q", result.KeptAudioPath, keepDir)
	}
	data, err := os.ReadFile(result.KeptAudioPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "audio" {
		t.Errorf("kept audio content = %q", data)
	}
}

func TestRunnerRejectsEmptyInput(t *testing.T) {
	f := newFixture(t)

	if _, err := f.runner(Options{}).Run(context.Background(), "   "); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("Run error = %v, want validation error", err)
	}
	if f.acquirer.gotInput != "" {
		t.Errorf("acquirer invoked with %q", f.acquirer.gotInput)
	}
}
