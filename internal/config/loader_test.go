package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoaderMissingDirectory(t *testing.T) {
	t.Parallel()

	l := NewLoader()
	cfg, err := l.Load(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.SignalK.URL != DefaultSignalKURL {
		t.Errorf("SignalK.URL = %q, want default", cfg.SignalK.URL)
	}
	if got := l.LoadedSections(); len(got) != 0 {
		t.Errorf("LoadedSections() = %v, want empty", got)
	}
}

func TestLoaderTracksLoadedSections(t *testing.T) {
	t.Parallel()

	root := setupManagerTestDir(t, []string{"visibility.yaml", "system.yaml"})
	l := NewLoader()
	if _, err := l.Load(filepath.Join(root, ".courseselect")); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	got := l.LoadedSections()
	want := map[string]bool{SectionVisibility: true, SectionSystem: true}
	if len(got) != len(want) {
		t.Fatalf("LoadedSections() = %v, want %v", got, want)
	}
	for k := range want {
		if !got[k] {
			t.Errorf("LoadedSections()[%q] = false, want true", k)
		}
	}

	// The returned map is a copy.
	got[SectionCatalog] = true
	if l.LoadedSections()[SectionCatalog] {
		t.Error("LoadedSections() returned internal map")
	}
}

func TestLoadYAMLFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var w visibilityFileWrapper

	loaded, err := loadYAMLFile(dir, "absent.yaml", &w)
	if loaded || err != nil {
		t.Errorf("loadYAMLFile(absent) = %v, %v; want false, nil", loaded, err)
	}

	data, err := os.ReadFile(filepath.Join("testdata", "invalid", "syntax.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bad.yaml"), data, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadYAMLFile(dir, "bad.yaml", &w); !errors.Is(err, ErrInvalidYAML) {
		t.Errorf("loadYAMLFile(bad) error = %v, want ErrInvalidYAML", err)
	}

	modeData, err := os.ReadFile(filepath.Join("testdata", "invalid", "mode.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "mode.yaml"), modeData, 0o644); err != nil {
		t.Fatal(err)
	}
	loaded, err = loadYAMLFile(dir, "mode.yaml", &w)
	if !loaded || err != nil {
		t.Fatalf("loadYAMLFile(mode) = %v, %v; want true, nil", loaded, err)
	}
	if w.Visibility.Mode != "vanish" {
		t.Errorf("Visibility.Mode = %q, want vanish decoded unvalidated", w.Visibility.Mode)
	}
}
