// Package gemini wraps the Google Generative Language REST API for the
// three text operations the pipeline needs: transcribing an uploaded audio
// file, reformatting raw transcript text, and summarizing.
//
// Generation requests run inside a retry envelope with exponential backoff.
// Transience is decided where the raw failure is first observed, by status
// code and error type rather than message text, so retry logic dispatches on
// a closed set of error kinds.
//
// The client also accumulates token usage across all calls of one run and
// prices it with a fixed per-model table. Cost figures are reporting only
// and never influence control flow.
package gemini
