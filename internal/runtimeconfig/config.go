package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrMatchTimeoutInvalid = errors.New("richtext config: converter match timeout must be zero or positive")
var ErrLoggingProviderRequired = errors.New("richtext config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("richtext config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("richtext config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("richtext config: logging format is invalid")

// DefaultMatchTimeout bounds a single regular expression evaluation.
const DefaultMatchTimeout = 250 * time.Millisecond

// Config aggregates converter, merge and logging settings.
type Config struct {
	Converter ConverterConfig
	Merge     MergeConfig
	Logging   LoggingConfig
	Features  Features
}

// ConverterConfig controls the markup rule engine.
type ConverterConfig struct {
	// MatchTimeout caps each regex evaluation; zero disables the cap.
	MatchTimeout time.Duration
	// DisabledRules lists markup rules removed from the pipeline entirely.
	DisabledRules []string
	// EscapeText is the default for ReplaceOptions.ShouldEscapeText.
	EscapeText bool
}

// MergeConfig controls FastMerge defaults for configuration-driven callers.
type MergeConfig struct {
	RemoveNullObjectValues bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// Features toggles optional behaviour.
type Features struct {
	Logger bool
}

// DefaultConfig returns the defaults used by the CLI and the root facade.
func DefaultConfig() Config {
	return Config{
		Converter: ConverterConfig{
			MatchTimeout: DefaultMatchTimeout,
			EscapeText:   true,
		},
		Merge: MergeConfig{
			RemoveNullObjectValues: true,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs consistency checks.
func (cfg Config) Validate() error {
	if cfg.Converter.MatchTimeout < 0 {
		return fmt.Errorf("%w: %s", ErrMatchTimeoutInvalid, cfg.Converter.MatchTimeout)
	}
	if !cfg.Features.Logger {
		return nil
	}

	provider := normalize(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := normalize(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := normalize(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	}
	return false
}

func isSupportedLevel(level string) bool {
	switch level {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	}
	return false
}

func isSupportedFormat(format string) bool {
	switch format {
	case "json", "console", "pretty":
		return true
	}
	return false
}
