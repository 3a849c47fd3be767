package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/moodlog/pkg/types"
)

// Default values. Durations are written to config.yaml in Go syntax.
const (
	DefaultBackend        = types.BackendSQLite
	DefaultLogLevel       = "info"
	DefaultLatency        = 500 * time.Millisecond
	DefaultBcryptCost     = 10
	DefaultProvider       = "gemini"
	DefaultTimeout        = 30 * time.Second
	DefaultGeminiModel    = "gemini-2.0-flash"
	DefaultMaxRetries     = 3
	DefaultRetryDelay     = time.Second
	DefaultServerAddr     = "127.0.0.1:8080"
	DefaultRemoteURL      = "http://127.0.0.1:8080"
	sessionSecretByteSize = 32
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend", DefaultBackend)
	v.SetDefault("data_dir", "")
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("sqlite.sync", types.SyncImmediate)
	v.SetDefault("sqlite.batch_size", types.DefaultBatchSize)
	v.SetDefault("sqlite.batch_interval", types.DefaultBatchInterval)
	v.SetDefault("auth.latency", DefaultLatency)
	v.SetDefault("auth.session_secret", "")
	v.SetDefault("auth.verify_session", true)
	v.SetDefault("auth.session_ttl", time.Duration(0))
	v.SetDefault("auth.bcrypt_cost", DefaultBcryptCost)
	v.SetDefault("classifier.provider", DefaultProvider)
	v.SetDefault("classifier.timeout", DefaultTimeout)
	v.SetDefault("classifier.gemini.api_key", "")
	v.SetDefault("classifier.gemini.model", DefaultGeminiModel)
	v.SetDefault("classifier.gemini.prompt_template", "")
	v.SetDefault("classifier.gemini.max_retries", DefaultMaxRetries)
	v.SetDefault("classifier.gemini.retry_delay", DefaultRetryDelay)
	v.SetDefault("classifier.remote.url", DefaultRemoteURL)
	v.SetDefault("server.addr", DefaultServerAddr)
}

// defaultFile mirrors config.yaml. It exists so the file keeps a stable
// field order and human-readable durations.
type defaultFile struct {
	Backend  string `yaml:"backend"`
	DataDir  string `yaml:"data_dir"`
	LogLevel string `yaml:"log_level"`
	SQLite   struct {
		Sync          string `yaml:"sync"`
		BatchSize     int    `yaml:"batch_size"`
		BatchInterval string `yaml:"batch_interval"`
	} `yaml:"sqlite"`
	Auth struct {
		Latency       string `yaml:"latency"`
		SessionSecret string `yaml:"session_secret"`
		VerifySession bool   `yaml:"verify_session"`
		SessionTTL    string `yaml:"session_ttl"`
		BcryptCost    int    `yaml:"bcrypt_cost"`
	} `yaml:"auth"`
	Classifier struct {
		Provider string `yaml:"provider"`
		Timeout  string `yaml:"timeout"`
		Gemini   struct {
			APIKey         string `yaml:"api_key"`
			Model          string `yaml:"model"`
			PromptTemplate string `yaml:"prompt_template"`
			MaxRetries     int    `yaml:"max_retries"`
			RetryDelay     string `yaml:"retry_delay"`
		} `yaml:"gemini"`
		Remote struct {
			URL string `yaml:"url"`
		} `yaml:"remote"`
	} `yaml:"classifier"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
}

const defaultHeader = `# moodlog configuration
# Every key can be overridden with a MOODLOG_ environment variable, for
# example MOODLOG_CLASSIFIER_GEMINI_API_KEY or MOODLOG_AUTH_LATENCY=0s.
`

// DefaultYAML renders the default config.yaml with a fresh session secret.
func DefaultYAML() ([]byte, error) {
	secret, err := NewSessionSecret()
	if err != nil {
		return nil, err
	}

	var f defaultFile
	f.Backend = DefaultBackend
	f.LogLevel = DefaultLogLevel
	f.SQLite.Sync = types.SyncImmediate
	f.SQLite.BatchSize = types.DefaultBatchSize
	f.SQLite.BatchInterval = types.DefaultBatchInterval.String()
	f.Auth.Latency = DefaultLatency.String()
	f.Auth.SessionSecret = secret
	f.Auth.VerifySession = true
	f.Auth.SessionTTL = "0s"
	f.Auth.BcryptCost = DefaultBcryptCost
	f.Classifier.Provider = DefaultProvider
	f.Classifier.Timeout = DefaultTimeout.String()
	f.Classifier.Gemini.Model = DefaultGeminiModel
	f.Classifier.Gemini.MaxRetries = DefaultMaxRetries
	f.Classifier.Gemini.RetryDelay = DefaultRetryDelay.String()
	f.Classifier.Remote.URL = DefaultRemoteURL
	f.Server.Addr = DefaultServerAddr

	body, err := yaml.Marshal(&f)
	if err != nil {
		return nil, fmt.Errorf("encode default config: %w", err)
	}
	return append([]byte(defaultHeader), body...), nil
}

// NewSessionSecret returns a random hex secret for signing session tokens.
func NewSessionSecret() (string, error) {
	b := make([]byte, sessionSecretByteSize)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
