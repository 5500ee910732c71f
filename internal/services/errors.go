package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks unusable caller input: missing files, bad
	// extensions, malformed URLs. Never retried.
	ErrValidation = errors.New("validation error")
	// ErrProcessing marks local processing failures: conversion, splitting,
	// download. Never retried at this layer.
	ErrProcessing = errors.New("processing error")
	// ErrExternalTool marks failures of external binaries (ffmpeg, ffprobe,
	// yt-dlp).
	ErrExternalTool = errors.New("external tool error")
	// ErrAPI marks remote transcription API failures, including retry
	// exhaustion and missing credentials.
	ErrAPI = errors.New("api error")
	// ErrTransient tags a remote failure expected to succeed when retried
	// (rate limiting, timeouts, 5xx). Set at the provider boundary so retry
	// logic dispatches on the tag, not on message contents.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrProcessing
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsTransient reports whether err carries the transient tag.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
