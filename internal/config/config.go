package config

import (
	"time"

	"github.com/mesh-intelligence/moodlog/pkg/types"
)

// Config holds every setting the CLI and the analyze server read.
type Config struct {
	Backend    string           `mapstructure:"backend" validate:"required,oneof=sqlite memory"`
	DataDir    string           `mapstructure:"data_dir"`
	LogLevel   string           `mapstructure:"log_level"`
	SQLite     SQLiteConfig     `mapstructure:"sqlite"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Server     ServerConfig     `mapstructure:"server"`
}

// SQLiteConfig tunes JSONL persistence.
type SQLiteConfig struct {
	Sync          string        `mapstructure:"sync" validate:"omitempty,oneof=immediate on_close batch"`
	BatchSize     int           `mapstructure:"batch_size" validate:"gte=0"`
	BatchInterval time.Duration `mapstructure:"batch_interval" validate:"gte=0"`
}

// AuthConfig controls accounts and sessions.
type AuthConfig struct {
	// Latency is waited before every account operation.
	Latency       time.Duration `mapstructure:"latency" validate:"gte=0"`
	SessionSecret string        `mapstructure:"session_secret" validate:"required,min=32"`
	VerifySession bool          `mapstructure:"verify_session"`
	// SessionTTL of zero means sessions never expire.
	SessionTTL time.Duration `mapstructure:"session_ttl" validate:"gte=0"`
	BcryptCost int           `mapstructure:"bcrypt_cost" validate:"omitempty,min=4,max=31"`
}

// ClassifierConfig picks and configures the mood classifier.
type ClassifierConfig struct {
	Provider string        `mapstructure:"provider" validate:"required,oneof=gemini remote"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Gemini   GeminiConfig  `mapstructure:"gemini"`
	Remote   RemoteConfig  `mapstructure:"remote"`
}

// GeminiConfig configures the Gemini classifier. APIKey is checked when the
// classifier is built, not here, so commands that never classify work
// without one.
type GeminiConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	Model          string        `mapstructure:"model" validate:"required"`
	PromptTemplate string        `mapstructure:"prompt_template"`
	MaxRetries     int           `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryDelay     time.Duration `mapstructure:"retry_delay" validate:"gte=0"`
}

// RemoteConfig points at a running analyze endpoint.
type RemoteConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// ServerConfig configures `moodlog serve`.
type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
}

// StoreConfig converts the storage settings for Store.Attach. dataDir is the
// resolved data directory.
func (c *Config) StoreConfig(dataDir string) types.Config {
	return types.Config{
		Backend: c.Backend,
		DataDir: dataDir,
		SQLite: types.SQLiteConfig{
			SyncStrategy:  c.SQLite.Sync,
			BatchSize:     c.SQLite.BatchSize,
			BatchInterval: c.SQLite.BatchInterval,
		},
	}
}
