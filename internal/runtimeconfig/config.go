package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrAdvancedCacheRequiresEnabledCache = errors.New("zonecontent config: advanced cache feature requires cache to be enabled")
var ErrLoggingProviderRequired = errors.New("zonecontent config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("zonecontent config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("zonecontent config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("zonecontent config: logging format is invalid")
var ErrAutoFillTimeoutInvalid = errors.New("zonecontent config: autofill query timeout must be zero or positive")
var ErrAutoFillMarginInvalid = errors.New("zonecontent config: autofill overfetch margin must be zero or positive")

// Config aggregates feature flags and adapter bindings for the zone content
// module. Fields intentionally use simple types so host applications can
// extend them later.
type Config struct {
	Enabled  bool
	Storage  StorageConfig
	Cache    CacheConfig
	AutoFill AutoFillConfig
	Features Features
	Logging  LoggingConfig
}

// StorageConfig lists identifiers for storage-related dependencies.
type StorageConfig struct {
	Driver string
	DSN    string
}

// CacheConfig captures cache behaviour toggles.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// AutoFillConfig tunes the auto-fill resolver.
type AutoFillConfig struct {
	// QueryTimeout bounds each content repository query. Zero applies the
	// resolver default.
	QueryTimeout time.Duration
	// OverfetchMargin is added to the exclusion-set size when over-fetching,
	// guarding against under-filled zones when exclusions are large.
	OverfetchMargin int
}

// Features toggles module functionality.
type Features struct {
	AutoFill      bool
	AdvancedCache bool
	Logger        bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns the baseline configuration used by the module façade.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		Storage: StorageConfig{
			Driver: "sqlite",
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
		},
		AutoFill: AutoFillConfig{
			QueryTimeout:    5 * time.Second,
			OverfetchMargin: 0,
		},
		Features: Features{
			AutoFill: true,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if cfg.Features.AdvancedCache && !cfg.Cache.Enabled {
		return ErrAdvancedCacheRequiresEnabledCache
	}
	if cfg.AutoFill.QueryTimeout < 0 {
		return ErrAutoFillTimeoutInvalid
	}
	if cfg.AutoFill.OverfetchMargin < 0 {
		return ErrAutoFillMarginInvalid
	}
	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
