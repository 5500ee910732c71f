package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable. The API key is deliberately
// not required here: commands that never call the API (history, config,
// deps) must work without one, and the Gemini client rejects a missing key
// itself.
func (c *Config) Validate() error {
	if err := c.validateGemini(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateGemini() error {
	if c.Gemini.Model == "" {
		return errors.New("gemini.model must be set")
	}
	if c.Gemini.RetryCount < 1 {
		return errors.New("gemini.retry_count must be at least 1")
	}
	if c.Gemini.RetryDelay < 0 {
		return errors.New("gemini.retry_delay must not be negative")
	}
	return nil
}

func (c *Config) validateAudio() error {
	if c.Audio.MaxSegmentSeconds <= 0 {
		return errors.New("audio.max_segment_seconds must be positive")
	}
	if c.Audio.MinSilenceSeconds <= 0 {
		return errors.New("audio.min_silence_seconds must be positive")
	}
	if c.Audio.SilenceThresholdDB >= 0 {
		return errors.New("audio.silence_threshold_db must be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.NtfyTopic != "" && c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive when a topic is set")
	}
	return nil
}
