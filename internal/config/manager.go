package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/hycracing/courseselect/internal/defs"
	"github.com/hycracing/courseselect/pkg/models"
)

// managerState represents the lifecycle state of the ConfigManager.
type managerState int

const (
	stateUninitialized managerState = iota
	stateInitialized
	stateWatching
)

// @MX:ANCHOR: [AUTO] ConfigManager is the single owner of the loaded configuration; call Load() before use.
// @MX:REASON: [AUTO] every CLI command reads settings through it via the composition root
// ConfigManager provides thread-safe configuration management.
// It must be initialized via Load() before use.
type ConfigManager struct {
	mu             sync.RWMutex
	config         *Config
	root           string
	configDir      string
	dirOverride    string
	state          managerState
	loader         *Loader
	callbacks      []func(Config)
	loadedSections map[string]bool
}

// NewConfigManager creates a new ConfigManager instance in uninitialized state.
func NewConfigManager() *ConfigManager {
	return &ConfigManager{
		loader: NewLoader(),
		state:  stateUninitialized,
	}
}

// SetConfigDir overrides the .courseselect directory. It takes precedence
// over COURSESELECT_CONFIG_DIR and applies to the next Load.
func (m *ConfigManager) SetConfigDir(dir string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirOverride = dir
}

// @MX:NOTE: [AUTO] Precedence: defaults < section files < .env < process environment.
// Load reads configuration from the project root's .courseselect/ directory.
// It merges file values with compiled defaults and applies environment
// variable overrides, including those from the project's .env file. The
// configuration is validated before being stored.
func (m *ConfigManager) Load(projectRoot string) (*Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg, err := m.loadLocked(projectRoot)
	if err != nil {
		return nil, err
	}

	m.config = cfg
	m.root = projectRoot
	m.state = stateInitialized

	return cfg, nil
}

func (m *ConfigManager) loadLocked(projectRoot string) (*Config, error) {
	configDir := m.resolveConfigDir(projectRoot)

	cfg, err := m.loader.Load(configDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// Track which sections were loaded from files
	m.loadedSections = m.loader.LoadedSections()

	// Apply environment variable overrides (higher priority than files)
	applyEnvOverrides(cfg, envLookup(projectRoot))

	// Validate the merged configuration
	if err := Validate(cfg, m.loadedSections); err != nil {
		return nil, err
	}

	m.configDir = configDir
	return cfg, nil
}

// resolveConfigDir applies the directory override, then the environment.
func (m *ConfigManager) resolveConfigDir(projectRoot string) string {
	if m.dirOverride != "" {
		return filepath.Clean(m.dirOverride)
	}
	if envDir := os.Getenv(defs.EnvConfigDir); envDir != "" {
		return filepath.Clean(envDir)
	}
	return filepath.Join(filepath.Clean(projectRoot), defs.ProjectDir)
}

// Get returns the current in-memory configuration.
// Returns nil if the manager has not been initialized via Load().
func (m *ConfigManager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// ConfigDir returns the .courseselect directory used by the last Load.
func (m *ConfigManager) ConfigDir() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.configDir
}

// LoadedSections reports which sections came from files.
func (m *ConfigManager) LoadedSections() map[string]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]bool, len(m.loadedSections))
	for k, v := range m.loadedSections {
		out[k] = v
	}
	return out
}

// GetSection returns a named configuration section.
// Returns ErrNotInitialized if Load() has not been called.
// Returns ErrSectionNotFound if the section name is invalid.
func (m *ConfigManager) GetSection(name string) (any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.state == stateUninitialized {
		return nil, ErrNotInitialized
	}

	return m.getSectionLocked(name)
}

// SetSection updates a named configuration section in memory.
// Returns ErrNotInitialized if Load() has not been called.
// Returns ErrSectionNotFound if the section name is invalid.
// Returns ErrSectionTypeMismatch if the value type does not match.
func (m *ConfigManager) SetSection(name string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == stateUninitialized {
		return ErrNotInitialized
	}

	return m.setSectionLocked(name, value)
}

// Save persists the current configuration to disk atomically.
// Each section is saved to its corresponding YAML file using
// temp file + os.Rename for atomic writes.
// Returns ErrNotInitialized if Load() has not been called.
func (m *ConfigManager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == stateUninitialized {
		return ErrNotInitialized
	}

	sectionsDir := sectionsPath(m.configDir)

	// Ensure directory exists
	if err := os.MkdirAll(sectionsDir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	sections := []struct {
		file string
		data any
	}{
		{defs.SignalKYAML, signalkFileWrapper{SignalK: m.config.SignalK}},
		{defs.VisibilityYAML, visibilityFileWrapper{Visibility: m.config.Visibility}},
		{defs.CatalogYAML, catalogFileWrapper{Catalog: m.config.Catalog}},
		{defs.SystemYAML, systemFileWrapper{System: m.config.System}},
	}
	for _, s := range sections {
		if err := saveSection(sectionsDir, s.file, s.data); err != nil {
			return fmt.Errorf("save %s: %w", s.file, err)
		}
	}

	return nil
}

// Reload forces a re-read from disk, replacing the in-memory configuration.
// Returns ErrNotInitialized if Load() has not been called.
func (m *ConfigManager) Reload() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == stateUninitialized {
		return ErrNotInitialized
	}

	cfg, err := m.loadLocked(m.root)
	if err != nil {
		return fmt.Errorf("reload config: %w", err)
	}
	m.config = cfg

	// Notify registered callbacks
	for _, cb := range m.callbacks {
		cb(*m.config)
	}

	return nil
}

// Watch registers a callback to be invoked when configuration is reloaded.
// Returns ErrNotInitialized if Load() has not been called.
func (m *ConfigManager) Watch(callback func(Config)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == stateUninitialized {
		return ErrNotInitialized
	}

	m.callbacks = append(m.callbacks, callback)
	m.state = stateWatching
	return nil
}

// getSectionLocked returns a section by name. Caller must hold at least RLock.
func (m *ConfigManager) getSectionLocked(name string) (any, error) {
	switch name {
	case SectionSignalK:
		return m.config.SignalK, nil
	case SectionVisibility:
		return m.config.Visibility, nil
	case SectionCatalog:
		return m.config.Catalog, nil
	case SectionSystem:
		return m.config.System, nil
	default:
		return nil, ErrSectionNotFound
	}
}

// setSectionLocked updates a section by name. Caller must hold Lock.
func (m *ConfigManager) setSectionLocked(name string, value any) error {
	switch name {
	case SectionSignalK:
		v, ok := value.(models.SignalKConfig)
		if !ok {
			return fmt.Errorf("%w: expected SignalKConfig for section %q", ErrSectionTypeMismatch, name)
		}
		m.config.SignalK = v
	case SectionVisibility:
		v, ok := value.(models.VisibilityConfig)
		if !ok {
			return fmt.Errorf("%w: expected VisibilityConfig for section %q", ErrSectionTypeMismatch, name)
		}
		m.config.Visibility = v
	case SectionCatalog:
		v, ok := value.(models.CatalogConfig)
		if !ok {
			return fmt.Errorf("%w: expected CatalogConfig for section %q", ErrSectionTypeMismatch, name)
		}
		m.config.Catalog = v
	case SectionSystem:
		v, ok := value.(models.SystemConfig)
		if !ok {
			return fmt.Errorf("%w: expected SystemConfig for section %q", ErrSectionTypeMismatch, name)
		}
		m.config.System = v
	default:
		return ErrSectionNotFound
	}
	return nil
}

// envLookup returns a lookup over the process environment that falls back
// to the project's .env file. A missing .env is not an error.
func envLookup(projectRoot string) func(string) string {
	path := filepath.Join(filepath.Clean(projectRoot), defs.EnvFile)
	dotenv, err := godotenv.Read(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to read .env, ignoring", "path", path, "error", err)
	}
	return func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return dotenv[key]
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables have higher priority than file-based values.
func applyEnvOverrides(cfg *Config, getenv func(string) string) {
	if url := getenv(defs.EnvSignalKURL); url != "" {
		cfg.SignalK.URL = url
	}
	if token := getenv(defs.EnvSignalKToken); token != "" {
		cfg.SignalK.Token = token
	}
	if mode := getenv(defs.EnvVisibilityMode); mode != "" {
		cfg.Visibility.Mode = models.VisibilityMode(mode)
	}
	if day := getenv(defs.EnvDay); day != "" {
		cfg.Catalog.Day = strings.ToLower(day)
	}
	if level := getenv(defs.EnvLogLevel); level != "" {
		cfg.System.LogLevel = level
	}
	if format := getenv(defs.EnvLogFormat); format != "" {
		cfg.System.LogFormat = models.LogFormat(format)
	}
	if noColor := getenv(defs.EnvNoColor); noColor == "true" || noColor == "1" {
		cfg.System.NoColor = true
	}
}

// saveSection marshals data to YAML and writes it atomically.
func saveSection(dir, filename string, data any) error {
	yamlData, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filename, err)
	}

	path := filepath.Join(dir, filename)
	return atomicWrite(path, yamlData)
}

// atomicWrite writes data to a file atomically using temp file + os.Rename.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".courseselect-config-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }() // cleanup on error path

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	return os.Rename(tmpName, path)
}
