package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/moodlog/internal/paths"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "MOODLOG"

// ErrInvalidConfig wraps validation failures.
var ErrInvalidConfig = errors.New("invalid configuration")

var validate = validator.New()

// Load reads config.yaml from configDir. The directory and a default file
// are created when missing. Environment variables override the file.
func Load(configDir string) (*Config, error) {
	if err := EnsureFile(configDir); err != nil {
		return nil, err
	}

	v := newViper()
	v.SetConfigFile(paths.ConfigFile(configDir))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return decode(v)
}

// EnsureFile creates configDir and writes the default config.yaml if none
// exists. An existing file is never touched.
func EnsureFile(configDir string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("ensure config dir: %w", err)
	}

	path := paths.ConfigFile(configDir)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat config file: %w", err)
	}

	data, err := DefaultYAML()
	if err != nil {
		return err
	}
	// The file holds the session secret.
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}

// Validate checks c against its struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The Gemini SDK's conventional variable works too.
	_ = v.BindEnv("classifier.gemini.api_key", EnvPrefix+"_CLASSIFIER_GEMINI_API_KEY", "GEMINI_API_KEY")
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
