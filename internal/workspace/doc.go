// Package workspace manages the per-run scratch directory that holds
// downloaded audio, converted files, and exported segments. Every run gets
// its own session directory so concurrent runs never collide, and cleanup is
// best-effort: a failed removal is logged, never surfaced as a run failure.
package workspace
