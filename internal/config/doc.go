// Package config loads moodlog settings from config.yaml in the config
// directory, applies MOODLOG_ environment overrides and validates the result.
// The default file is written on first run.
package config
