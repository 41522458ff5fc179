package config

import "path/filepath"

// Config is the top-level vibestudio configuration, corresponding to
// .vibestudio.yml.
type Config struct {
	DataDir   string          `yaml:"data_dir" koanf:"data_dir"`
	Server    ServerConfig    `yaml:"server" koanf:"server"`
	Documents DocumentsConfig `yaml:"documents" koanf:"documents"`
	Playback  PlaybackConfig  `yaml:"playback" koanf:"playback"`
	Watch     WatchConfig     `yaml:"watch" koanf:"watch"`
	Log       LogConfig       `yaml:"log" koanf:"log"`
}

// ServerConfig holds HTTP settings for `vibestudio serve`.
type ServerConfig struct {
	Port            int     `yaml:"port" koanf:"port"`
	BaseURL         string  `yaml:"base_url" koanf:"base_url"`
	AllowAllOrigins bool    `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	RateLimit       float64 `yaml:"rate_limit" koanf:"rate_limit"`
	RateBurst       int     `yaml:"rate_burst" koanf:"rate_burst"`
	MaxUploadMB     int     `yaml:"max_upload_mb" koanf:"max_upload_mb"`
}

// DocumentsConfig controls which file names count as documents: they are
// preferred on upload and seeded with the HTML template when added.
type DocumentsConfig struct {
	Patterns []string `yaml:"patterns" koanf:"patterns"`
}

// PlaybackConfig tunes typing playback.
type PlaybackConfig struct {
	DefaultSpeed  int `yaml:"default_speed" koanf:"default_speed"`
	SettleDelayMS int `yaml:"settle_delay_ms" koanf:"settle_delay_ms"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	Dir        string   `yaml:"dir" koanf:"dir"`
	Exclude    []string `yaml:"exclude" koanf:"exclude"`
	DebounceMS int      `yaml:"debounce_ms" koanf:"debounce_ms"`
}

// LogConfig configures logrus.
type LogConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format"`
}

// DBPath is the SQLite database inside DataDir.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "studio.db")
}
