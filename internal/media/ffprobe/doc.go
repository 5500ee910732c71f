// Package ffprobe wraps the ffprobe binary for metadata-only audio
// inspection. Probing reads container headers without decoding, so it is the
// fast path for duration discovery.
package ffprobe
