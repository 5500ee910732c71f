// Package workflow orchestrates a full transcription run: acquiring the
// source audio, splitting it into segments, transcribing the segments
// concurrently, and running the optional formatting and summary passes.
// Temporary session directories are always removed when a run finishes,
// whether it succeeded or failed.
package workflow
