// Package config loads, normalizes, and validates scribe's TOML
// configuration. Values resolve from an explicit --config path, then
// ~/.config/scribe/config.toml, then ./scribe.toml, with the Gemini API key
// falling back to the GEMINI_API_KEY environment variable.
package config
