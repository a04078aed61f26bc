package config

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/hycracing/courseselect/internal/defs"
)

// Loader reads configuration from YAML section files.
// It is thread-safe via sync.RWMutex.
type Loader struct {
	mu             sync.RWMutex
	loadedSections map[string]bool
}

// NewLoader creates a new Loader instance.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads all configuration section files from the given .courseselect
// directory and returns a merged Config with defaults applied for missing
// fields. Missing files use default values. Invalid YAML files are skipped
// with a warning.
func (l *Loader) Load(configDir string) (*Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.loadedSections = make(map[string]bool)
	cfg := NewDefaultConfig()

	sectionsDir := sectionsPath(configDir)

	// If sections directory does not exist, return defaults
	if _, err := os.Stat(sectionsDir); os.IsNotExist(err) {
		slog.Debug("config sections directory not found, using defaults", "path", sectionsDir)
		return cfg, nil
	}

	l.loadSection(sectionsDir, defs.SignalKYAML, SectionSignalK, &signalkFileWrapper{SignalK: cfg.SignalK}, func(w any) {
		cfg.SignalK = w.(*signalkFileWrapper).SignalK
	})
	l.loadSection(sectionsDir, defs.VisibilityYAML, SectionVisibility, &visibilityFileWrapper{Visibility: cfg.Visibility}, func(w any) {
		cfg.Visibility = w.(*visibilityFileWrapper).Visibility
	})
	l.loadSection(sectionsDir, defs.CatalogYAML, SectionCatalog, &catalogFileWrapper{Catalog: cfg.Catalog}, func(w any) {
		cfg.Catalog = w.(*catalogFileWrapper).Catalog
	})
	l.loadSection(sectionsDir, defs.SystemYAML, SectionSystem, &systemFileWrapper{System: cfg.System}, func(w any) {
		cfg.System = w.(*systemFileWrapper).System
	})

	return cfg, nil
}

// LoadedSections returns a copy of the map indicating which sections
// were successfully loaded from YAML files.
func (l *Loader) LoadedSections() map[string]bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]bool, len(l.loadedSections))
	maps.Copy(result, l.loadedSections)
	return result
}

// loadSection decodes one section file into wrapper, which starts out
// holding the defaults, and hands it to apply when the file exists.
func (l *Loader) loadSection(dir, filename, section string, wrapper any, apply func(any)) {
	loaded, err := loadYAMLFile(dir, filename, wrapper)
	if err != nil {
		slog.Warn("failed to load config section, using defaults", "section", section, "error", err)
		return
	}
	if loaded {
		apply(wrapper)
		l.loadedSections[section] = true
	}
}

// sectionsPath returns the sections directory under a .courseselect directory.
func sectionsPath(configDir string) string {
	return filepath.Join(filepath.Clean(configDir), defs.ConfigSubdir, defs.SectionsSubdir)
}

// loadYAMLFile reads a YAML file from the given directory and unmarshals it
// into the target struct. Returns (true, nil) if the file was found and parsed,
// (false, nil) if the file does not exist, or (false, error) on failure.
func loadYAMLFile(dir, filename string, target any) (bool, error) {
	path := filepath.Join(dir, filename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, target); err != nil {
		return false, fmt.Errorf("parse %s: %w", filename, ErrInvalidYAML)
	}

	return true, nil
}
