package config

import (
	"time"

	"github.com/hycracing/courseselect/internal/resilience"
	"github.com/hycracing/courseselect/pkg/models"
)

// Config is the root configuration aggregate containing all sections.
type Config struct {
	SignalK    models.SignalKConfig    `yaml:"signalk"`
	Visibility models.VisibilityConfig `yaml:"visibility"`
	Catalog    models.CatalogConfig    `yaml:"catalog"`
	System     models.SystemConfig     `yaml:"system"`
}

// Timeout returns the per-request timeout of the server client.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.SignalK.TimeoutSeconds) * time.Second
}

// StreamPeriod returns the push interval requested from the delta stream.
func (c *Config) StreamPeriod() time.Duration {
	return time.Duration(c.SignalK.StreamPeriodMS) * time.Millisecond
}

// RetryPolicy returns the retry policy for server requests.
func (c *Config) RetryPolicy() resilience.RetryPolicy {
	p := resilience.DefaultRetryPolicy()
	p.MaxRetries = c.SignalK.MaxRetries
	return p
}

// Section names accepted by GetSection and SetSection.
const (
	SectionSignalK    = "signalk"
	SectionVisibility = "visibility"
	SectionCatalog    = "catalog"
	SectionSystem     = "system"
)

// SectionNames returns every section name in file order.
func SectionNames() []string {
	return []string{SectionSignalK, SectionVisibility, SectionCatalog, SectionSystem}
}

// YAML file wrapper types. Each section file has a single top-level key.

type signalkFileWrapper struct {
	SignalK models.SignalKConfig `yaml:"signalk"`
}

type visibilityFileWrapper struct {
	Visibility models.VisibilityConfig `yaml:"visibility"`
}

type catalogFileWrapper struct {
	Catalog models.CatalogConfig `yaml:"catalog"`
}

type systemFileWrapper struct {
	System models.SystemConfig `yaml:"system"`
}
