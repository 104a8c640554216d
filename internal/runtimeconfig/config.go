package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrDefaultLocaleRequired  = errors.New("editor config: default locale is required")
	ErrDefaultLocaleUnlisted  = errors.New("editor config: default locale must appear in locales")
	ErrLocaleDuplicated       = errors.New("editor config: locale listed twice")
	ErrStorageDriverUnknown   = errors.New("editor config: storage driver is invalid")
	ErrStorageDSNRequired     = errors.New("editor config: sqlite storage requires a dsn")
	ErrAutosaveQuietInvalid   = errors.New("editor config: autosave quiet period must be positive")
	ErrLoggingProviderUnknown = errors.New("editor config: logging provider is invalid")
	ErrLoggingLevelInvalid    = errors.New("editor config: logging level is invalid")
	ErrLoggingFormatInvalid   = errors.New("editor config: logging format is invalid")
)

// Storage driver identifiers for the local draft store.
const (
	StorageDriverMemory = "memory"
	StorageDriverSQLite = "sqlite"
)

// Logging provider identifiers.
const (
	LoggingProviderNoop     = "noop"
	LoggingProviderGoLogger = "gologger"
)

// Config is the runtime configuration of the editing engine.
type Config struct {
	I18N     I18NConfig
	Autosave AutosaveConfig
	Storage  StorageConfig
	Remote   RemoteConfig
	Logging  LoggingConfig
}

// I18NConfig declares the locale setup shared by every component.
type I18NConfig struct {
	DefaultLocale string
	Locales       []string
	GlobalsUnitID string
}

// AutosaveConfig tunes the debounced draft writer.
type AutosaveConfig struct {
	Enabled     bool
	QuietPeriod time.Duration
}

// StorageConfig selects the local draft store backend.
type StorageConfig struct {
	Driver string
	DSN    string
}

// RemoteConfig points at the versioned content store.
type RemoteConfig struct {
	BaseURL string
	Token   string
}

// LoggingConfig selects the logger provider wiring.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
}

// DefaultConfig returns opinionated defaults: English-only locales, an
// in-memory draft store, autosave after two quiet seconds.
func DefaultConfig() Config {
	return Config{
		I18N: I18NConfig{
			DefaultLocale: "en",
			Locales:       []string{"en"},
			GlobalsUnitID: "globals",
		},
		Autosave: AutosaveConfig{
			Enabled:     true,
			QuietPeriod: 2 * time.Second,
		},
		Storage: StorageConfig{
			Driver: StorageDriverMemory,
		},
		Logging: LoggingConfig{
			Provider: LoggingProviderNoop,
			Level:    "info",
			Format:   "json",
		},
	}
}

// Validate checks cross-field consistency.
func (c Config) Validate() error {
	if err := c.I18N.validate(); err != nil {
		return err
	}
	if err := c.Autosave.validate(); err != nil {
		return err
	}
	if err := c.Storage.validate(); err != nil {
		return err
	}
	return c.Logging.validate()
}

func (c I18NConfig) validate() error {
	defaultLocale := strings.TrimSpace(c.DefaultLocale)
	if defaultLocale == "" {
		return ErrDefaultLocaleRequired
	}
	seen := map[string]struct{}{}
	found := false
	for _, locale := range c.Locales {
		code := strings.TrimSpace(locale)
		if _, dup := seen[code]; dup {
			return fmt.Errorf("%w: %s", ErrLocaleDuplicated, code)
		}
		seen[code] = struct{}{}
		if code == defaultLocale {
			found = true
		}
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrDefaultLocaleUnlisted, defaultLocale)
	}
	return nil
}

func (c AutosaveConfig) validate() error {
	if c.Enabled && c.QuietPeriod <= 0 {
		return ErrAutosaveQuietInvalid
	}
	return nil
}

func (c StorageConfig) validate() error {
	switch strings.TrimSpace(c.Driver) {
	case "", StorageDriverMemory:
		return nil
	case StorageDriverSQLite:
		if strings.TrimSpace(c.DSN) == "" {
			return ErrStorageDSNRequired
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, c.Driver)
	}
}

func (c LoggingConfig) validate() error {
	switch strings.TrimSpace(c.Provider) {
	case "", LoggingProviderNoop, LoggingProviderGoLogger:
	default:
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, c.Provider)
	}
	switch strings.ToLower(strings.TrimSpace(c.Level)) {
	case "", "trace", "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, c.Level)
	}
	switch strings.ToLower(strings.TrimSpace(c.Format)) {
	case "", "json", "console", "pretty":
	default:
		return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, c.Format)
	}
	return nil
}
