package cli

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/hycracing/courseselect/internal/config"
	"github.com/hycracing/courseselect/internal/ui"
)

func TestInitDependencies(t *testing.T) {
	t.Cleanup(func() { SetDeps(nil) })
	InitDependencies()

	d := GetDeps()
	if d == nil {
		t.Fatal("GetDeps() = nil after InitDependencies")
	}
	if d.Config == nil || d.Logger == nil || d.Theme == nil || d.Headless == nil {
		t.Errorf("InitDependencies left a nil field: %+v", d)
	}
	if d.Catalog != nil || d.Client != nil || d.Settings != nil {
		t.Error("catalog, client and settings should be initialized lazily")
	}
}

func TestEnsureBeforeConfig(t *testing.T) {
	d := &Dependencies{Config: config.NewConfigManager()}
	if err := d.EnsureCatalog(); err != ErrNotInitialized {
		t.Errorf("EnsureCatalog() = %v, want ErrNotInitialized", err)
	}
	if err := d.EnsureClient(); err != ErrNotInitialized {
		t.Errorf("EnsureClient() = %v, want ErrNotInitialized", err)
	}
}

func TestEnsureConfig_Overrides(t *testing.T) {
	root := t.TempDir()
	configDir := filepath.Join(root, "cfg")
	writeSection(t, configDir, "signalk.yaml", "signalk:\n  url: http://boat.local:3000\n  timeout_seconds: 5\n  stream_period_ms: 500\n  max_retries: 1\n")

	d := &Dependencies{Config: config.NewConfigManager()}
	err := d.EnsureConfig(root, Overrides{
		ConfigDir: configDir,
		URL:       "http://127.0.0.1:3999",
		LogLevel:  "debug",
		NoColor:   true,
	}, io.Discard)
	if err != nil {
		t.Fatalf("EnsureConfig() error = %v", err)
	}

	if got := d.Settings.SignalK.URL; got != "http://127.0.0.1:3999" {
		t.Errorf("Settings URL = %q, want flag value", got)
	}
	if got := d.Config.Get().SignalK.URL; got != "http://boat.local:3000" {
		t.Errorf("manager URL = %q, want file value", got)
	}
	if !d.Theme.NoColor {
		t.Error("Theme.NoColor = false, want true")
	}

	if err := d.EnsureClient(); err != nil {
		t.Fatalf("EnsureClient() error = %v", err)
	}
	if got := d.Client.BaseURL(); got != "http://127.0.0.1:3999" {
		t.Errorf("Client.BaseURL() = %q", got)
	}

	settings := d.Settings
	if err := d.EnsureConfig(root, Overrides{URL: "http://other:1"}, io.Discard); err != nil {
		t.Fatalf("second EnsureConfig() error = %v", err)
	}
	if d.Settings != settings {
		t.Error("second EnsureConfig() should be a no-op")
	}
}

func TestEnsureConfig_HeadlessDisablesColor(t *testing.T) {
	root := t.TempDir()
	hm := ui.NewHeadlessManager()
	hm.ForceHeadless(true)
	d := &Dependencies{Config: config.NewConfigManager(), Headless: hm}

	if err := d.EnsureConfig(root, Overrides{ConfigDir: filepath.Join(root, "cfg")}, io.Discard); err != nil {
		t.Fatalf("EnsureConfig() error = %v", err)
	}
	if d.Settings.System.NoColor {
		t.Fatal("Settings.System.NoColor = true, want the default")
	}
	if !d.Theme.NoColor {
		t.Error("Theme.NoColor = false for a headless run, want true")
	}
}

func TestEnsureCatalog_ExternalFile(t *testing.T) {
	root := t.TempDir()
	table := filepath.Join(root, "courses.yaml")
	content := "day: club\ncourses:\n  - {number: \"101\", waypoints: [\"Z\", \"C\"], length_nm: 1.2}\n"
	if err := os.WriteFile(table, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	configDir := filepath.Join(root, "cfg")
	writeSection(t, configDir, "catalog.yaml", "catalog:\n  day: club\n  file: "+table+"\n")

	d := &Dependencies{Config: config.NewConfigManager()}
	if err := d.EnsureConfig(root, Overrides{ConfigDir: configDir}, io.Discard); err != nil {
		t.Fatalf("EnsureConfig() error = %v", err)
	}
	if err := d.EnsureCatalog(); err != nil {
		t.Fatalf("EnsureCatalog() error = %v", err)
	}
	if got := d.Catalog.Len(); got != 1 {
		t.Errorf("Catalog.Len() = %d, want 1", got)
	}
	if _, ok := d.Catalog.Lookup("101"); !ok {
		t.Error("Lookup(101) not found")
	}
}

func TestCourseSettings(t *testing.T) {
	d := &Dependencies{Settings: config.NewDefaultConfig()}
	d.Settings.Catalog.Day = "tuesday"
	d.Settings.Catalog.RoutePrefix = "HYC-Tue-"

	s := d.CourseSettings()
	if s.Day != "tuesday" || s.RoutePrefix != "HYC-Tue-" {
		t.Errorf("CourseSettings() = %+v", s)
	}
}

func TestClose_Idempotent(t *testing.T) {
	d := &Dependencies{}
	if err := d.Close(); err != nil {
		t.Errorf("Close() without log file = %v", err)
	}
}
