package config

// DefaultPath is where init writes the config and commands look for it.
const DefaultPath = ".vibestudio.yml"

// DefaultDocumentPatterns are the names treated as documents by default.
var DefaultDocumentPatterns = []string{"**/*.html", "**/*.htm"}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DataDir: ".vibestudio",
		Server: ServerConfig{
			Port:        5173,
			RateLimit:   50,
			RateBurst:   100,
			MaxUploadMB: 32,
		},
		Documents: DocumentsConfig{
			Patterns: append([]string(nil), DefaultDocumentPatterns...),
		},
		Playback: PlaybackConfig{
			DefaultSpeed:  60,
			SettleDelayMS: 200,
		},
		Watch: WatchConfig{
			DebounceMS: 250,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
