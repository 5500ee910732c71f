package services

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	err := Wrap(ErrValidation, "source", "classify", "unsupported format .wma", nil)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "source: classify: unsupported format .wma") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("exit status 1")
	err := Wrap(ErrExternalTool, "ffmpeg", "convert", "", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	if !errors.Is(err, ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
}

func TestWrapNilMarkerDefaultsToProcessing(t *testing.T) {
	err := Wrap(nil, "", "", "", nil)
	if !errors.Is(err, ErrProcessing) {
		t.Fatalf("expected processing marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestIsTransient(t *testing.T) {
	err := Wrap(ErrTransient, "gemini", "generate", "http 503", nil)
	if !IsTransient(err) {
		t.Fatal("expected transient classification")
	}
	if IsTransient(Wrap(ErrAPI, "gemini", "generate", "http 400", nil)) {
		t.Fatal("permanent error misclassified as transient")
	}
}
