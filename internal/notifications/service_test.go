package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"scribe/internal/config"
	"scribe/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyRunCompleted(context.Background(), "Example", 2, time.Minute); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

type recorded struct {
	title    string
	message  string
	tags     string
	priority string
}

func newRecordingServer(t *testing.T, sink *recorded) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		sink.title = r.Header.Get("Title")
		sink.message = string(body)
		sink.tags = r.Header.Get("Tags")
		sink.priority = r.Header.Get("Priority")
		w.WriteHeader(http.StatusOK)
	}))
}

func newNtfyService(topic string) notifications.Service {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = topic
	return notifications.NewService(&cfg)
}

func TestNotifyRunCompletedPayload(t *testing.T) {
	var got recorded
	server := newRecordingServer(t, &got)
	defer server.Close()

	svc := newNtfyService(server.URL)
	if err := svc.NotifyRunCompleted(context.Background(), "Go Talk", 2, 93*time.Second); err != nil {
		t.Fatalf("notify failed: %v", err)
	}
	if got.title != "Scribe - Complete" {
		t.Fatalf("unexpected title: %q", got.title)
	}
	if !strings.Contains(got.message, "Go Talk") || !strings.Contains(got.message, "2 segments") {
		t.Fatalf("unexpected message: %q", got.message)
	}
	if got.tags != "scribe,run,completed" {
		t.Fatalf("unexpected tags: %q", got.tags)
	}
	if got.priority != "high" {
		t.Fatalf("unexpected priority: %q", got.priority)
	}
}

func TestNotifyRunFailedIncludesError(t *testing.T) {
	var got recorded
	server := newRecordingServer(t, &got)
	defer server.Close()

	svc := newNtfyService(server.URL)
	if err := svc.NotifyRunFailed(context.Background(), "Go Talk", errors.New("api error: transcribe failed")); err != nil {
		t.Fatalf("notify failed: %v", err)
	}
	if got.title != "Scribe - Error" {
		t.Fatalf("unexpected title: %q", got.title)
	}
	if !strings.Contains(got.message, "api error: transcribe failed") {
		t.Fatalf("unexpected message: %q", got.message)
	}
}

func TestSendSurfacesServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("denied"))
	}))
	defer server.Close()

	svc := newNtfyService(server.URL)
	err := svc.TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected status error, got %v", err)
	}
}
