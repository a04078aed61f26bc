package defs

// Project directory layout.
const (
	// ProjectDir is the per-project directory holding courseselect state.
	ProjectDir = ".courseselect"

	// ConfigSubdir and SectionsSubdir locate the section files under ProjectDir.
	ConfigSubdir   = "config"
	SectionsSubdir = "sections"

	// EnvFile is read from the project root before environment overrides.
	EnvFile = ".env"
)

// Section YAML file names under .courseselect/config/sections/.
const (
	SignalKYAML    = "signalk.yaml"
	VisibilityYAML = "visibility.yaml"
	CatalogYAML    = "catalog.yaml"
	SystemYAML     = "system.yaml"
)

// Environment variables read by the configuration layer and the UI.
const (
	EnvConfigDir      = "COURSESELECT_CONFIG_DIR"
	EnvSignalKURL     = "COURSESELECT_SIGNALK_URL"
	EnvSignalKToken   = "COURSESELECT_SIGNALK_TOKEN"
	EnvVisibilityMode = "COURSESELECT_VISIBILITY_MODE"
	EnvDay            = "COURSESELECT_DAY"
	EnvLogLevel       = "COURSESELECT_LOG_LEVEL"
	EnvLogFormat      = "COURSESELECT_LOG_FORMAT"
	EnvNoColor        = "COURSESELECT_NO_COLOR"
	EnvHeadless       = "COURSESELECT_HEADLESS"
)
