// Package ffmpeg wraps the ffmpeg binary for the audio operations the
// pipeline needs: MP3 conversion, segment export, silence detection, and a
// decode-based duration fallback for containers whose headers ffprobe cannot
// read.
package ffmpeg
