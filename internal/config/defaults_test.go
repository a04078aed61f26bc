package config

import (
	"testing"
	"time"

	"github.com/hycracing/courseselect/pkg/models"
)

func TestNewDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := NewDefaultConfig()
	if cfg.SignalK.URL != DefaultSignalKURL {
		t.Errorf("SignalK.URL = %q, want %q", cfg.SignalK.URL, DefaultSignalKURL)
	}
	if cfg.Visibility.Mode != models.ModeHide || !cfg.Visibility.AutoRestore {
		t.Errorf("Visibility = %+v, want hide with auto restore", cfg.Visibility)
	}
	if cfg.Visibility.ExcludeRoutes == nil {
		t.Error("Visibility.ExcludeRoutes should be an empty slice, not nil")
	}
	if cfg.Catalog.Day != "wednesday" || cfg.Catalog.RoutePrefix != "HYC-Wed-" {
		t.Errorf("Catalog = %+v", cfg.Catalog)
	}
	if cfg.System.LogLevel != "info" || cfg.System.LogFormat != models.LogFormatText {
		t.Errorf("System = %+v", cfg.System)
	}
}

func TestConfigDurations(t *testing.T) {
	t.Parallel()

	cfg := NewDefaultConfig()
	if got := cfg.Timeout(); got != 10*time.Second {
		t.Errorf("Timeout() = %v, want 10s", got)
	}
	if got := cfg.StreamPeriod(); got != time.Second {
		t.Errorf("StreamPeriod() = %v, want 1s", got)
	}

	cfg.SignalK.MaxRetries = 5
	if got := cfg.RetryPolicy().MaxRetries; got != 5 {
		t.Errorf("RetryPolicy().MaxRetries = %d, want 5", got)
	}
}

func TestSectionNames(t *testing.T) {
	t.Parallel()

	cfg := NewDefaultConfig()
	m := &ConfigManager{config: cfg, state: stateInitialized}
	for _, name := range SectionNames() {
		if _, err := m.GetSection(name); err != nil {
			t.Errorf("GetSection(%q) error: %v", name, err)
		}
	}
}
