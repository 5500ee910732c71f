package config

const (
	defaultModel              = "gemini-2.5-flash"
	defaultBaseURL            = "https://generativelanguage.googleapis.com"
	defaultRetryCount         = 5
	defaultRetryDelay         = 1
	defaultTimeoutSeconds     = 300
	defaultMaxSegmentSeconds  = 1800
	defaultMinSilenceSeconds  = 3.0
	defaultSilenceThresholdDB = -35.0
	defaultOutputDir          = "./output"
	defaultLogDir             = "~/.local/share/scribe/logs"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultNotifyTimeout      = 10
	defaultHistoryPath        = "~/.local/share/scribe/history.db"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Gemini: Gemini{
			Model:          defaultModel,
			BaseURL:        defaultBaseURL,
			RetryCount:     defaultRetryCount,
			RetryDelay:     defaultRetryDelay,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Audio: Audio{
			MaxSegmentSeconds:  defaultMaxSegmentSeconds,
			MinSilenceSeconds:  defaultMinSilenceSeconds,
			SilenceThresholdDB: defaultSilenceThresholdDB,
		},
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath,
		},
	}
}
