package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSaveAndListRuns(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := &Run{
		Input:             "https://youtu.be/abc",
		Kind:              "youtube",
		Title:             "Go Talk",
		Status:            StatusCompleted,
		AudioSeconds:      2000,
		ProcessingSeconds: 93.5,
		SegmentCount:      2,
		Model:             "gemini-2.5-flash",
		TotalTokens:       12000,
		AudioInputTokens:  9000,
		OutputTokens:      3000,
		CostUSD:           0.016,
		OutputDir:         "/out",
	}
	if err := store.SaveRun(ctx, first); err != nil {
		t.Fatalf("save first run: %v", err)
	}
	if first.ID == 0 {
		t.Fatal("expected run id to be assigned")
	}
	if first.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}

	second := &Run{
		Input:        "/audio/talk.mp3",
		Kind:         "file",
		Status:       StatusFailed,
		ErrorMessage: "api error: transcribe failed",
	}
	if err := store.SaveRun(ctx, second); err != nil {
		t.Fatalf("save second run: %v", err)
	}

	runs, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	// Newest first.
	if runs[0].Input != "/audio/talk.mp3" || runs[0].Status != StatusFailed {
		t.Fatalf("unexpected first row: %+v", runs[0])
	}
	if runs[1].Title != "Go Talk" || runs[1].SegmentCount != 2 || runs[1].AudioInputTokens != 9000 {
		t.Fatalf("round trip mismatch: %+v", runs[1])
	}
	if runs[1].CreatedAt.IsZero() {
		t.Fatal("expected created_at to round trip")
	}
}

func TestListRunsHonorsLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		run := &Run{Input: "input", Kind: "file", Status: StatusCompleted, CreatedAt: time.Now().UTC()}
		if err := store.SaveRun(ctx, run); err != nil {
			t.Fatalf("save run %d: %v", i, err)
		}
	}
	runs, err := store.ListRuns(ctx, 3)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if _, err := store.db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	if _, err := Open(path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}

func TestReopenKeepsExistingRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := store.SaveRun(context.Background(), &Run{Input: "a", Kind: "file", Status: StatusCompleted}); err != nil {
		t.Fatalf("save run: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer reopened.Close()
	runs, err := reopened.ListRuns(context.Background(), 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected persisted run, got %d rows", len(runs))
	}
}
