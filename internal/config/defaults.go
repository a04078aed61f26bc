package config

import (
	"github.com/hycracing/courseselect/pkg/models"
)

// Default value constants to avoid magic numbers and strings.
const (
	DefaultSignalKURL     = "http://localhost:3000"
	DefaultTimeoutSeconds = 10
	DefaultStreamPeriodMS = 1000
	DefaultMaxRetries     = 2

	DefaultVisibilityMode = models.ModeHide
	DefaultAutoRestore    = true

	DefaultDay         = "wednesday"
	DefaultRoutePrefix = "HYC-Wed-"

	DefaultLogLevel  = "info"
	DefaultLogFormat = models.LogFormatText
)

// NewDefaultConfig returns a Config with all default values applied.
func NewDefaultConfig() *Config {
	return &Config{
		SignalK:    NewDefaultSignalKConfig(),
		Visibility: NewDefaultVisibilityConfig(),
		Catalog:    NewDefaultCatalogConfig(),
		System:     NewDefaultSystemConfig(),
	}
}

// NewDefaultSignalKConfig returns a SignalKConfig with default values.
func NewDefaultSignalKConfig() models.SignalKConfig {
	return models.SignalKConfig{
		URL:            DefaultSignalKURL,
		TimeoutSeconds: DefaultTimeoutSeconds,
		StreamPeriodMS: DefaultStreamPeriodMS,
		MaxRetries:     DefaultMaxRetries,
	}
}

// NewDefaultVisibilityConfig returns a VisibilityConfig with default values.
func NewDefaultVisibilityConfig() models.VisibilityConfig {
	return models.VisibilityConfig{
		Mode:          DefaultVisibilityMode,
		AutoRestore:   DefaultAutoRestore,
		ExcludeRoutes: []string{},
	}
}

// NewDefaultCatalogConfig returns a CatalogConfig with default values.
func NewDefaultCatalogConfig() models.CatalogConfig {
	return models.CatalogConfig{
		Day:         DefaultDay,
		RoutePrefix: DefaultRoutePrefix,
	}
}

// NewDefaultSystemConfig returns a SystemConfig with default values.
func NewDefaultSystemConfig() models.SystemConfig {
	return models.SystemConfig{
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
	}
}
