// Package cli provides the Cobra command tree and dependency injection
// wiring for the courseselect CLI. This file defines the Dependencies struct
// (Composition Root) that wires all domain modules together.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/brunoga/deep"

	"github.com/hycracing/courseselect/internal/catalog"
	"github.com/hycracing/courseselect/internal/config"
	"github.com/hycracing/courseselect/internal/course"
	"github.com/hycracing/courseselect/internal/logging"
	"github.com/hycracing/courseselect/internal/signalk"
	"github.com/hycracing/courseselect/internal/ui"
)

// ErrNotInitialized is returned when a command runs before InitDependencies.
var ErrNotInitialized = errors.New("cli: dependencies not initialized")

// Overrides are the persistent root flags. Empty values leave the
// configuration untouched.
type Overrides struct {
	ConfigDir string
	URL       string
	LogLevel  string
	NoColor   bool
}

// Dependencies holds all domain-level services used by CLI commands.
// This is the Composition Root: the only place where concrete types
// are instantiated and wired together.
type Dependencies struct {
	Config   *config.ConfigManager
	Catalog  *catalog.Catalog
	Client   *signalk.Client
	Logger   *slog.Logger
	Theme    *ui.Theme
	Headless *ui.HeadlessManager

	// Settings is the loaded configuration with flag overrides applied.
	// The manager's copy stays as loaded so Save never writes flags back.
	Settings *config.Config

	logCloser io.Closer
}

// deps is the global dependencies instance, initialized by InitDependencies.
var deps *Dependencies

// @MX:ANCHOR: [AUTO] InitDependencies is the Composition Root that wires all domain modules
// @MX:REASON: [AUTO] called from root.go Execute and from every cli test through SetDeps
// InitDependencies creates the dependencies that need no project root.
// Config, catalog and client are initialized lazily by the Ensure methods.
func InitDependencies() {
	deps = &Dependencies{
		Config:   config.NewConfigManager(),
		Logger:   logging.Discard(),
		Theme:    ui.NewTheme(ui.ThemeConfig{}),
		Headless: ui.NewHeadlessManager(),
	}
}

// GetDeps returns the current Dependencies instance.
// Returns nil if InitDependencies has not been called.
func GetDeps() *Dependencies {
	return deps
}

// SetDeps replaces the global dependencies (used for testing).
func SetDeps(d *Dependencies) {
	deps = d
}

// EnsureConfig loads the configuration of projectRoot, applies the flag
// overrides and builds the logger and theme from the result. Subsequent
// calls are no-ops.
func (d *Dependencies) EnsureConfig(projectRoot string, o Overrides, logOut io.Writer) error {
	if d.Settings != nil {
		return nil
	}
	if o.ConfigDir != "" {
		d.Config.SetConfigDir(o.ConfigDir)
	}
	loaded, err := d.Config.Load(projectRoot)
	if err != nil {
		return err
	}

	settings, err := deep.Copy(loaded)
	if err != nil {
		return fmt.Errorf("copy config: %w", err)
	}
	if o.URL != "" {
		settings.SignalK.URL = o.URL
	}
	if o.LogLevel != "" {
		settings.System.LogLevel = o.LogLevel
	}
	if o.NoColor {
		settings.System.NoColor = true
	}

	logger, closer, err := logging.New(settings.System, logOut)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	d.Settings = settings
	d.Logger = logger
	d.logCloser = closer
	if d.Headless == nil {
		d.Headless = ui.NewHeadlessManager()
	}
	d.Headless.SetNoColor(settings.System.NoColor)
	d.Theme = ui.NewTheme(ui.ThemeConfig{NoColor: !d.Headless.ColorEnabled()})
	return nil
}

// EnsureCatalog loads the course table of the configured day, or the
// external table file when one is set.
func (d *Dependencies) EnsureCatalog() error {
	if d.Catalog != nil {
		return nil
	}
	if d.Settings == nil {
		return ErrNotInitialized
	}

	cc := d.Settings.Catalog
	if cc.File == "" {
		cat, err := catalog.Load(cc.Day)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		d.Catalog = cat
		return nil
	}

	f, err := os.Open(cc.File)
	if err != nil {
		return fmt.Errorf("open catalog file: %w", err)
	}
	defer func() { _ = f.Close() }()
	cat, err := catalog.Parse(f)
	if err != nil {
		return fmt.Errorf("parse catalog file %s: %w", cc.File, err)
	}
	d.Catalog = cat
	return nil
}

// EnsureClient creates the SignalK client from the configuration.
func (d *Dependencies) EnsureClient() error {
	if d.Client != nil {
		return nil
	}
	if d.Settings == nil {
		return ErrNotInitialized
	}
	client, err := signalk.NewClient(signalk.Config{
		BaseURL: d.Settings.SignalK.URL,
		Token:   d.Settings.SignalK.Token,
		Timeout: d.Settings.Timeout(),
		Retry:   d.Settings.RetryPolicy(),
	}, signalk.WithLogger(d.Logger))
	if err != nil {
		return fmt.Errorf("create signalk client: %w", err)
	}
	d.Client = client
	return nil
}

// CourseSettings returns the settings shared by the course operations.
func (d *Dependencies) CourseSettings() course.Settings {
	s := course.Settings{Logger: d.Logger}
	if d.Settings != nil {
		s.Day = d.Settings.Catalog.Day
		s.RoutePrefix = d.Settings.Catalog.RoutePrefix
	}
	return s
}

// Close releases the log file.
func (d *Dependencies) Close() error {
	if d.logCloser == nil {
		return nil
	}
	err := d.logCloser.Close()
	d.logCloser = nil
	return err
}
