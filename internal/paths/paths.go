// Package paths resolves where moodlog keeps its configuration and its
// journal data.
//
// A journal belongs to a person rather than a project, so both directories
// default to the per-user platform locations. Each can be overridden by a
// flag or an environment variable; the data directory can also be set in
// config.yaml.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// AppName is the directory name used under the platform locations.
const AppName = "moodlog"

// ConfigFileName is the configuration file inside the config directory.
const ConfigFileName = "config.yaml"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "MOODLOG_CONFIG_DIR"
	EnvDataDir   = "MOODLOG_DATA_DIR"
)

// platformDir is swapped out by tests.
var platformDir = struct {
	goos          string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	goos:          runtime.GOOS,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/moodlog (fallback ~/.config/moodlog)
// macOS:   ~/Library/Application Support/moodlog
// Windows: %APPDATA%/moodlog
func DefaultConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform data directory.
//
// Linux:   $XDG_DATA_HOME/moodlog (fallback ~/.local/share/moodlog)
// macOS and Windows: same as DefaultConfigDir
func DefaultDataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdgDir(env, homeRel string) (string, error) {
	if platformDir.goos != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
	if xdg := os.Getenv(env); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, homeRel, AppName), nil
}

// ResolveConfigDir applies flag > MOODLOG_CONFIG_DIR > DefaultConfigDir.
func ResolveConfigDir(flag string) (string, error) {
	for _, candidate := range []string{flag, os.Getenv(EnvConfigDir)} {
		if candidate != "" {
			return abs(candidate)
		}
	}
	return DefaultConfigDir()
}

// ResolveDataDir applies flag > MOODLOG_DATA_DIR > config.yaml data_dir >
// DefaultDataDir. The environment beats the file, as it does for every
// other setting.
func ResolveDataDir(flag, configValue string) (string, error) {
	for _, candidate := range []string{flag, os.Getenv(EnvDataDir), configValue} {
		if candidate != "" {
			return abs(candidate)
		}
	}
	return DefaultDataDir()
}

// ConfigFile returns the config.yaml path inside dir.
func ConfigFile(dir string) string {
	return filepath.Join(dir, ConfigFileName)
}

// abs expands a leading "~/" and makes the result absolute.
func abs(p string) (string, error) {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return filepath.Abs(p)
}
