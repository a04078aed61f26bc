package config

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/hycracing/courseselect/pkg/models"
)

// setupManagerTestDir creates a project root with .courseselect/config/sections
// and copies testdata files into it. Returns the project root path.
func setupManagerTestDir(t *testing.T, files []string) string {
	t.Helper()
	tempDir := t.TempDir()
	sectionsDir := filepath.Join(tempDir, ".courseselect", "config", "sections")
	if err := os.MkdirAll(sectionsDir, 0o755); err != nil {
		t.Fatalf("failed to create sections dir: %v", err)
	}

	for _, f := range files {
		src := filepath.Join("testdata", "valid", f)
		data, err := os.ReadFile(src)
		if err != nil {
			t.Fatalf("failed to read testdata file %s: %v", f, err)
		}
		dst := filepath.Join(sectionsDir, f)
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			t.Fatalf("failed to write test file %s: %v", dst, err)
		}
	}
	return tempDir
}

func writeSection(t *testing.T, root, file, content string) {
	t.Helper()
	path := filepath.Join(root, ".courseselect", "config", "sections", file)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create sections dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", file, err)
	}
}

func loadedManager(t *testing.T, files ...string) *ConfigManager {
	t.Helper()
	root := setupManagerTestDir(t, files)
	m := NewConfigManager()
	if _, err := m.Load(root); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return m
}

func TestNewConfigManager(t *testing.T) {
	t.Parallel()

	m := NewConfigManager()
	if m == nil {
		t.Fatal("NewConfigManager() returned nil")
	}
	if m.loader == nil {
		t.Error("NewConfigManager() should initialize loader")
	}
	if m.state != stateUninitialized {
		t.Errorf("expected state %d (uninitialized), got %d", stateUninitialized, m.state)
	}
}

func TestConfigManagerLoadValid(t *testing.T) {
	t.Parallel()

	root := setupManagerTestDir(t, []string{"signalk.yaml", "visibility.yaml", "catalog.yaml", "system.yaml"})
	m := NewConfigManager()

	cfg, err := m.Load(root)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.SignalK.URL != "http://chartplotter.local:3000" {
		t.Errorf("SignalK.URL: got %q, want %q", cfg.SignalK.URL, "http://chartplotter.local:3000")
	}
	if cfg.SignalK.Token != "test-token" {
		t.Errorf("SignalK.Token: got %q, want %q", cfg.SignalK.Token, "test-token")
	}
	if cfg.SignalK.MaxRetries != 3 {
		t.Errorf("SignalK.MaxRetries: got %d, want 3", cfg.SignalK.MaxRetries)
	}
	if cfg.Visibility.Mode != models.ModeKeepBackup {
		t.Errorf("Visibility.Mode: got %q, want %q", cfg.Visibility.Mode, models.ModeKeepBackup)
	}
	if cfg.Visibility.AutoRestore {
		t.Error("Visibility.AutoRestore: got true, want false")
	}
	if len(cfg.Visibility.ExcludeRoutes) != 2 {
		t.Errorf("Visibility.ExcludeRoutes: got %d entries, want 2", len(cfg.Visibility.ExcludeRoutes))
	}
	if cfg.Catalog.Day != "tuesday" || cfg.Catalog.RoutePrefix != "HYC-Tue-" {
		t.Errorf("Catalog: got %+v", cfg.Catalog)
	}
	if cfg.System.LogFormat != models.LogFormatJSON || !cfg.System.NoColor {
		t.Errorf("System: got %+v", cfg.System)
	}

	if got := m.ConfigDir(); got != filepath.Join(root, ".courseselect") {
		t.Errorf("ConfigDir() = %q, want %q", got, filepath.Join(root, ".courseselect"))
	}
	if loaded := m.LoadedSections(); len(loaded) != 4 {
		t.Errorf("LoadedSections() = %v, want all four sections", loaded)
	}
}

func TestConfigManagerLoadDefaults(t *testing.T) {
	t.Parallel()

	// Empty project root with no .courseselect directory
	root := t.TempDir()
	m := NewConfigManager()

	cfg, err := m.Load(root)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.SignalK.URL != DefaultSignalKURL {
		t.Errorf("SignalK.URL: got %q, want default %q", cfg.SignalK.URL, DefaultSignalKURL)
	}
	if cfg.Visibility.Mode != models.ModeHide {
		t.Errorf("Visibility.Mode: got %q, want default %q", cfg.Visibility.Mode, models.ModeHide)
	}
	if !cfg.Visibility.AutoRestore {
		t.Error("Visibility.AutoRestore: got false, want default true")
	}
	if cfg.Catalog.Day != DefaultDay {
		t.Errorf("Catalog.Day: got %q, want default %q", cfg.Catalog.Day, DefaultDay)
	}
}

func TestConfigManagerLoadPartialSectionKeepsDefaults(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeSection(t, root, "signalk.yaml", "signalk:\n  url: https://boat.example:3443\n")

	cfg, err := NewConfigManager().Load(root)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.SignalK.URL != "https://boat.example:3443" {
		t.Errorf("SignalK.URL: got %q", cfg.SignalK.URL)
	}
	if cfg.SignalK.TimeoutSeconds != DefaultTimeoutSeconds {
		t.Errorf("SignalK.TimeoutSeconds: got %d, want default %d", cfg.SignalK.TimeoutSeconds, DefaultTimeoutSeconds)
	}
}

func TestConfigManagerLoadValidationError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		content string
		want    error
	}{
		{"empty url", "signalk.yaml", "signalk:\n  url: \"\"\n", ErrInvalidConfig},
		{"ftp url", "signalk.yaml", "signalk:\n  url: ftp://boat\n", ErrInvalidURL},
		{"unknown mode", "visibility.yaml", "visibility:\n  mode: vanish\n", ErrInvalidVisibilityMode},
		{"unknown day", "catalog.yaml", "catalog:\n  day: sunday\n", ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			root := t.TempDir()
			writeSection(t, root, tt.file, tt.content)

			_, err := NewConfigManager().Load(root)
			if !errors.Is(err, tt.want) {
				t.Errorf("Load() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestConfigManagerLoadInvalidYAMLUsesDefaults(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	data, err := os.ReadFile(filepath.Join("testdata", "invalid", "syntax.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	writeSection(t, root, "signalk.yaml", string(data))

	m := NewConfigManager()
	cfg, err := m.Load(root)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.SignalK.URL != DefaultSignalKURL {
		t.Errorf("SignalK.URL: got %q, want default %q", cfg.SignalK.URL, DefaultSignalKURL)
	}
	if m.LoadedSections()[SectionSignalK] {
		t.Error("signalk section should not be marked loaded")
	}
}

func TestConfigManagerGet(t *testing.T) {
	t.Parallel()

	t.Run("before load returns nil", func(t *testing.T) {
		t.Parallel()
		m := NewConfigManager()
		if got := m.Get(); got != nil {
			t.Errorf("Get() before Load() should return nil, got: %v", got)
		}
	})

	t.Run("after load returns config", func(t *testing.T) {
		t.Parallel()
		m := loadedManager(t, "signalk.yaml")
		got := m.Get()
		if got == nil {
			t.Fatal("Get() after Load() returned nil")
		}
		if got.SignalK.Token != "test-token" {
			t.Errorf("Get().SignalK.Token = %q, want %q", got.SignalK.Token, "test-token")
		}
	})
}

func TestConfigManagerGetSection(t *testing.T) {
	t.Parallel()

	m := loadedManager(t, "signalk.yaml", "visibility.yaml", "catalog.yaml", "system.yaml")

	tests := []struct {
		name  string
		check func(t *testing.T, v any)
	}{
		{SectionSignalK, func(t *testing.T, v any) {
			if _, ok := v.(models.SignalKConfig); !ok {
				t.Errorf("got %T, want models.SignalKConfig", v)
			}
		}},
		{SectionVisibility, func(t *testing.T, v any) {
			vc, ok := v.(models.VisibilityConfig)
			if !ok || vc.Mode != models.ModeKeepBackup {
				t.Errorf("got %#v, want keep-backup VisibilityConfig", v)
			}
		}},
		{SectionCatalog, func(t *testing.T, v any) {
			if _, ok := v.(models.CatalogConfig); !ok {
				t.Errorf("got %T, want models.CatalogConfig", v)
			}
		}},
		{SectionSystem, func(t *testing.T, v any) {
			if _, ok := v.(models.SystemConfig); !ok {
				t.Errorf("got %T, want models.SystemConfig", v)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v, err := m.GetSection(tt.name)
			if err != nil {
				t.Fatalf("GetSection(%q) error: %v", tt.name, err)
			}
			tt.check(t, v)
		})
	}
}

func TestConfigManagerGetSectionErrors(t *testing.T) {
	t.Parallel()

	if _, err := NewConfigManager().GetSection(SectionSignalK); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("GetSection() before Load() error = %v, want ErrNotInitialized", err)
	}

	m := loadedManager(t)
	if _, err := m.GetSection("quality"); !errors.Is(err, ErrSectionNotFound) {
		t.Errorf("GetSection(quality) error = %v, want ErrSectionNotFound", err)
	}
}

func TestConfigManagerSetSection(t *testing.T) {
	t.Parallel()

	m := loadedManager(t)

	vis := models.VisibilityConfig{Mode: models.ModeDelete, ExcludeRoutes: []string{"R9"}}
	if err := m.SetSection(SectionVisibility, vis); err != nil {
		t.Fatalf("SetSection() error: %v", err)
	}
	if got := m.Get().Visibility.Mode; got != models.ModeDelete {
		t.Errorf("Visibility.Mode after SetSection = %q, want %q", got, models.ModeDelete)
	}

	if err := m.SetSection(SectionVisibility, "hide"); !errors.Is(err, ErrSectionTypeMismatch) {
		t.Errorf("SetSection(string) error = %v, want ErrSectionTypeMismatch", err)
	}
	if err := m.SetSection("llm", vis); !errors.Is(err, ErrSectionNotFound) {
		t.Errorf("SetSection(llm) error = %v, want ErrSectionNotFound", err)
	}
	if err := NewConfigManager().SetSection(SectionVisibility, vis); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("SetSection() before Load() error = %v, want ErrNotInitialized", err)
	}
}

func TestConfigManagerSaveAndReloadRoundTrip(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	m := NewConfigManager()
	if _, err := m.Load(root); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	sk := m.Get().SignalK
	sk.URL = "http://10.10.10.1:3000"
	sk.MaxRetries = 0
	if err := m.SetSection(SectionSignalK, sk); err != nil {
		t.Fatalf("SetSection() error: %v", err)
	}
	cat := models.CatalogConfig{Day: "tuesday", RoutePrefix: "HYC-Tue-"}
	if err := m.SetSection(SectionCatalog, cat); err != nil {
		t.Fatalf("SetSection() error: %v", err)
	}
	if err := m.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	for _, f := range []string{"signalk.yaml", "visibility.yaml", "catalog.yaml", "system.yaml"} {
		if _, err := os.Stat(filepath.Join(root, ".courseselect", "config", "sections", f)); err != nil {
			t.Errorf("Save() did not write %s: %v", f, err)
		}
	}
	tmps, _ := filepath.Glob(filepath.Join(root, ".courseselect", "config", "sections", "*.tmp"))
	if len(tmps) != 0 {
		t.Errorf("Save() left temp files: %v", tmps)
	}

	fresh := NewConfigManager()
	cfg, err := fresh.Load(root)
	if err != nil {
		t.Fatalf("Load() after Save() error: %v", err)
	}
	if cfg.SignalK.URL != "http://10.10.10.1:3000" || cfg.SignalK.MaxRetries != 0 {
		t.Errorf("SignalK after round trip = %+v", cfg.SignalK)
	}
	if cfg.Catalog.Day != "tuesday" {
		t.Errorf("Catalog.Day after round trip = %q, want tuesday", cfg.Catalog.Day)
	}
}

func TestConfigManagerSaveNotInitialized(t *testing.T) {
	t.Parallel()

	if err := NewConfigManager().Save(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Save() error = %v, want ErrNotInitialized", err)
	}
}

func TestConfigManagerReloadAndWatch(t *testing.T) {
	t.Parallel()

	root := setupManagerTestDir(t, []string{"catalog.yaml"})
	m := NewConfigManager()
	if _, err := m.Load(root); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	var got []Config
	if err := m.Watch(func(c Config) { got = append(got, c) }); err != nil {
		t.Fatalf("Watch() error: %v", err)
	}
	if m.state != stateWatching {
		t.Errorf("state after Watch() = %d, want %d", m.state, stateWatching)
	}

	writeSection(t, root, "catalog.yaml", "catalog:\n  day: wednesday\n  route_prefix: HYC-Wed-\n")
	if err := m.Reload(); err != nil {
		t.Fatalf("Reload() error: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("callback invoked %d times, want 1", len(got))
	}
	if got[0].Catalog.Day != "wednesday" {
		t.Errorf("callback Catalog.Day = %q, want wednesday", got[0].Catalog.Day)
	}

	if err := NewConfigManager().Reload(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Reload() before Load() error = %v, want ErrNotInitialized", err)
	}
	if err := NewConfigManager().Watch(func(Config) {}); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Watch() before Load() error = %v, want ErrNotInitialized", err)
	}
}

func TestConfigManagerSetConfigDir(t *testing.T) {
	t.Parallel()

	elsewhere := t.TempDir()
	writeSection(t, elsewhere, "catalog.yaml", "catalog:\n  day: tuesday\n")

	m := NewConfigManager()
	m.SetConfigDir(filepath.Join(elsewhere, ".courseselect"))
	cfg, err := m.Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Catalog.Day != "tuesday" {
		t.Errorf("Catalog.Day = %q, want tuesday from the override directory", cfg.Catalog.Day)
	}
}

func TestConfigManagerDotEnv(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	env := "COURSESELECT_VISIBILITY_MODE=keep-backup\nCOURSESELECT_SIGNALK_URL=http://dotenv.local:3000\n"
	if err := os.WriteFile(filepath.Join(root, ".env"), []byte(env), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewConfigManager().Load(root)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Visibility.Mode != models.ModeKeepBackup {
		t.Errorf("Visibility.Mode = %q, want keep-backup from .env", cfg.Visibility.Mode)
	}
	if cfg.SignalK.URL != "http://dotenv.local:3000" {
		t.Errorf("SignalK.URL = %q, want value from .env", cfg.SignalK.URL)
	}
}

func TestConfigManagerEnvOverridesDotEnv(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".env"), []byte("COURSESELECT_DAY=wednesday\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("COURSESELECT_DAY", "Tuesday")

	cfg, err := NewConfigManager().Load(root)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Catalog.Day != "tuesday" {
		t.Errorf("Catalog.Day = %q, want tuesday from the environment", cfg.Catalog.Day)
	}
}

func TestConfigManagerEnvOverrideConfigDir(t *testing.T) {
	elsewhere := t.TempDir()
	writeSection(t, elsewhere, "system.yaml", "system:\n  log_level: warn\n")
	t.Setenv("COURSESELECT_CONFIG_DIR", filepath.Join(elsewhere, ".courseselect"))

	cfg, err := NewConfigManager().Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.System.LogLevel != "warn" {
		t.Errorf("System.LogLevel = %q, want warn", cfg.System.LogLevel)
	}
}

func TestConfigManagerEnvOverrideInvalidMode(t *testing.T) {
	t.Setenv("COURSESELECT_VISIBILITY_MODE", "vanish")

	_, err := NewConfigManager().Load(t.TempDir())
	if !errors.Is(err, ErrInvalidVisibilityMode) {
		t.Errorf("Load() error = %v, want ErrInvalidVisibilityMode", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"COURSESELECT_SIGNALK_URL":     "http://env:3000",
		"COURSESELECT_SIGNALK_TOKEN":   "tok",
		"COURSESELECT_VISIBILITY_MODE": "delete",
		"COURSESELECT_DAY":             "TUESDAY",
		"COURSESELECT_LOG_LEVEL":       "debug",
		"COURSESELECT_LOG_FORMAT":      "json",
		"COURSESELECT_NO_COLOR":        "1",
	}
	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg, func(k string) string { return env[k] })

	if cfg.SignalK.URL != "http://env:3000" || cfg.SignalK.Token != "tok" {
		t.Errorf("SignalK = %+v", cfg.SignalK)
	}
	if cfg.Visibility.Mode != models.ModeDelete {
		t.Errorf("Visibility.Mode = %q, want delete", cfg.Visibility.Mode)
	}
	if cfg.Catalog.Day != "tuesday" {
		t.Errorf("Catalog.Day = %q, want tuesday", cfg.Catalog.Day)
	}
	if cfg.System.LogLevel != "debug" || cfg.System.LogFormat != models.LogFormatJSON || !cfg.System.NoColor {
		t.Errorf("System = %+v", cfg.System)
	}

	untouched := NewDefaultConfig()
	applyEnvOverrides(untouched, func(string) string { return "" })
	if untouched.SignalK.URL != DefaultSignalKURL || untouched.System.NoColor {
		t.Errorf("empty environment changed config: %+v", untouched)
	}
}

func TestConfigManagerConcurrentReadWrite(t *testing.T) {
	t.Parallel()

	m := loadedManager(t)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = m.Get()
			_, _ = m.GetSection(SectionVisibility)
		}()
		go func() {
			defer wg.Done()
			mode := models.ModeHide
			if i%2 == 0 {
				mode = models.ModeKeepBackup
			}
			_ = m.SetSection(SectionVisibility, models.VisibilityConfig{Mode: mode})
		}()
	}
	wg.Wait()

	if !m.Get().Visibility.Mode.IsValid() {
		t.Errorf("Visibility.Mode = %q after concurrent writes", m.Get().Visibility.Mode)
	}
}
