// @MX:NOTE: [AUTO] Shared configuration sections and enums used by config, cli and visibility.
package models

// VisibilityMode selects what the visibility engine does with routes that
// are not the active route.
type VisibilityMode string

const (
	// ModeHide removes inactive routes from the server and keeps a snapshot
	// so they can be restored (default).
	ModeHide VisibilityMode = "hide"

	// ModeDelete behaves like ModeHide. The label is kept for configurations
	// written by older installs.
	ModeDelete VisibilityMode = "delete"

	// ModeKeepBackup snapshots inactive routes without removing them.
	ModeKeepBackup VisibilityMode = "keep-backup"
)

// ValidVisibilityModes returns all valid visibility mode values.
func ValidVisibilityModes() []VisibilityMode {
	return []VisibilityMode{ModeHide, ModeDelete, ModeKeepBackup}
}

// IsValid checks if the visibility mode is a valid value.
func (m VisibilityMode) IsValid() bool {
	switch m {
	case ModeHide, ModeDelete, ModeKeepBackup:
		return true
	}
	return false
}

// Removes reports whether the mode sends removal requests for hidden routes.
func (m VisibilityMode) Removes() bool {
	return m == ModeHide || m == ModeDelete
}

// LogFormat selects the slog handler.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// IsValid checks if the log format is a valid value.
func (f LogFormat) IsValid() bool {
	return f == LogFormatText || f == LogFormatJSON
}

// SignalKConfig represents the signalk configuration section.
type SignalKConfig struct {
	URL            string `yaml:"url"`
	Token          string `yaml:"token,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	StreamPeriodMS int    `yaml:"stream_period_ms"`
	MaxRetries     int    `yaml:"max_retries"`
}

// VisibilityConfig represents the visibility configuration section.
type VisibilityConfig struct {
	Mode          VisibilityMode `yaml:"mode"`
	AutoRestore   bool           `yaml:"auto_restore"`
	ExcludeRoutes []string       `yaml:"exclude_routes"`
}

// CatalogConfig represents the catalog configuration section.
type CatalogConfig struct {
	// Day selects the embedded course table: wednesday or tuesday.
	Day string `yaml:"day"`

	// RoutePrefix is prepended to the course number when naming routes.
	RoutePrefix string `yaml:"route_prefix"`

	// File points at an external course table that replaces the embedded one.
	File string `yaml:"file,omitempty"`
}

// SystemConfig represents the system configuration section.
type SystemConfig struct {
	LogLevel  string    `yaml:"log_level"`
	LogFormat LogFormat `yaml:"log_format"`
	LogFile   string    `yaml:"log_file,omitempty"`
	NoColor   bool      `yaml:"no_color"`
}
