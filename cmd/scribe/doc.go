// Command scribe transcribes local audio files and YouTube videos using
// the Gemini API, with optional formatting and summary passes.
package main
