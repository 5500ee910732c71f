// Package source resolves the pipeline's input into a local MP3 file. An
// input string is either a YouTube URL, fetched with yt-dlp, or a local audio
// file, validated against a supported-extension allowlist. Either way the
// rest of the pipeline only ever sees a local path plus descriptive metadata.
package source
