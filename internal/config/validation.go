package config

import (
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"

	"github.com/hycracing/courseselect/internal/catalog"
	"github.com/hycracing/courseselect/pkg/models"
)

// Dynamic token patterns that must not appear in configuration values.
// These indicate unexpanded template variables.
var dynamicTokenPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$\{[^}]+\}`),        // ${VAR}
	regexp.MustCompile(`\{\{[^}]+\}\}`),      // {{VAR}}
	regexp.MustCompile(`\$[A-Z_][A-Z0-9_]*`), // $VAR
}

// validLogLevels lists the accepted system.log_level values.
var validLogLevels = []string{"debug", "info", "warn", "error"}

// @MX:ANCHOR: [AUTO] Single validation entry point for every loaded configuration.
// @MX:REASON: [AUTO] Load and Reload both reject configurations failing here
// Validate checks the configuration for correctness.
// The loadedSections map indicates which sections were loaded from YAML files
// (as opposed to using defaults). Required field validation only applies
// to sections that were explicitly loaded.
func Validate(cfg *Config, loadedSections map[string]bool) error {
	var errs []ValidationError

	errs = append(errs, validateRequired(cfg, loadedSections)...)
	errs = append(errs, validateSignalK(&cfg.SignalK)...)
	errs = append(errs, validateVisibility(&cfg.Visibility)...)
	errs = append(errs, validateCatalog(&cfg.Catalog)...)
	errs = append(errs, validateSystem(&cfg.System)...)

	// Check for unexpanded dynamic tokens
	errs = append(errs, validateDynamicTokens(cfg)...)

	if len(errs) > 0 {
		return &ValidationErrors{Errors: errs}
	}
	return nil
}

// validateRequired checks that required fields are populated for loaded sections.
func validateRequired(cfg *Config, loadedSections map[string]bool) []ValidationError {
	var errs []ValidationError

	if loadedSections[SectionSignalK] && cfg.SignalK.URL == "" {
		errs = append(errs, ValidationError{
			Field:   "signalk.url",
			Message: "required field is empty; set the server URL in .courseselect/config/sections/signalk.yaml (example: url: http://localhost:3000)",
			Wrapped: ErrInvalidConfig,
		})
	}

	return errs
}

// validateSignalK checks the server connection settings.
func validateSignalK(s *models.SignalKConfig) []ValidationError {
	var errs []ValidationError

	if s.URL != "" {
		u, err := url.Parse(s.URL)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, ValidationError{
				Field:   "signalk.url",
				Message: "must be an absolute http or https URL",
				Value:   s.URL,
				Wrapped: ErrInvalidURL,
			})
		}
	}

	if s.TimeoutSeconds <= 0 {
		errs = append(errs, ValidationError{
			Field:   "signalk.timeout_seconds",
			Message: "must be positive",
			Value:   s.TimeoutSeconds,
			Wrapped: ErrInvalidConfig,
		})
	}

	if s.StreamPeriodMS <= 0 {
		errs = append(errs, ValidationError{
			Field:   "signalk.stream_period_ms",
			Message: "must be positive",
			Value:   s.StreamPeriodMS,
			Wrapped: ErrInvalidConfig,
		})
	}

	if s.MaxRetries < 0 {
		errs = append(errs, ValidationError{
			Field:   "signalk.max_retries",
			Message: "must be non-negative",
			Value:   s.MaxRetries,
			Wrapped: ErrInvalidConfig,
		})
	}

	return errs
}

// validateVisibility checks that the visibility mode is a valid value.
func validateVisibility(v *models.VisibilityConfig) []ValidationError {
	if v.Mode == "" {
		return nil // empty is acceptable, the engine falls back to hide
	}
	if !v.Mode.IsValid() {
		return []ValidationError{
			{
				Field:   "visibility.mode",
				Message: fmt.Sprintf("must be one of: %s", strings.Join(visibilityModeStrings(), ", ")),
				Value:   string(v.Mode),
				Wrapped: ErrInvalidVisibilityMode,
			},
		}
	}
	return nil
}

// validateCatalog checks the race day has an embedded table. A custom
// table file may name any day.
func validateCatalog(c *models.CatalogConfig) []ValidationError {
	if c.File != "" || c.Day == "" {
		return nil
	}
	days := catalog.Days()
	if !slices.Contains(days, strings.ToLower(c.Day)) {
		return []ValidationError{
			{
				Field:   "catalog.day",
				Message: fmt.Sprintf("must be one of: %s", strings.Join(days, ", ")),
				Value:   c.Day,
				Wrapped: ErrInvalidConfig,
			},
		}
	}
	return nil
}

// validateSystem checks log settings.
func validateSystem(s *models.SystemConfig) []ValidationError {
	var errs []ValidationError

	if s.LogLevel != "" && !slices.Contains(validLogLevels, strings.ToLower(s.LogLevel)) {
		errs = append(errs, ValidationError{
			Field:   "system.log_level",
			Message: fmt.Sprintf("must be one of: %s", strings.Join(validLogLevels, ", ")),
			Value:   s.LogLevel,
			Wrapped: ErrInvalidConfig,
		})
	}

	if s.LogFormat != "" && !s.LogFormat.IsValid() {
		errs = append(errs, ValidationError{
			Field:   "system.log_format",
			Message: "must be one of: text, json",
			Value:   string(s.LogFormat),
			Wrapped: ErrInvalidConfig,
		})
	}

	return errs
}

// validateDynamicTokens checks all string fields for unexpanded dynamic tokens.
func validateDynamicTokens(cfg *Config) []ValidationError {
	var errs []ValidationError

	errs = append(errs, checkStringField("signalk.url", cfg.SignalK.URL)...)
	errs = append(errs, checkStringField("signalk.token", cfg.SignalK.Token)...)

	errs = append(errs, checkStringField("visibility.mode", string(cfg.Visibility.Mode))...)
	for i, id := range cfg.Visibility.ExcludeRoutes {
		errs = append(errs, checkStringField(fmt.Sprintf("visibility.exclude_routes[%d]", i), id)...)
	}

	errs = append(errs, checkStringField("catalog.day", cfg.Catalog.Day)...)
	errs = append(errs, checkStringField("catalog.route_prefix", cfg.Catalog.RoutePrefix)...)
	errs = append(errs, checkStringField("catalog.file", cfg.Catalog.File)...)

	errs = append(errs, checkStringField("system.log_level", cfg.System.LogLevel)...)
	errs = append(errs, checkStringField("system.log_file", cfg.System.LogFile)...)

	return errs
}

// checkStringField checks a single string field for dynamic token patterns.
func checkStringField(field, value string) []ValidationError {
	if value == "" {
		return nil
	}
	for _, pattern := range dynamicTokenPatterns {
		if match := pattern.FindString(value); match != "" {
			return []ValidationError{
				{
					Field:   field,
					Message: fmt.Sprintf("contains unexpanded dynamic token: %s", match),
					Value:   value,
					Wrapped: ErrDynamicToken,
				},
			}
		}
	}
	return nil
}

// visibilityModeStrings returns valid visibility mode values as strings.
func visibilityModeStrings() []string {
	modes := models.ValidVisibilityModes()
	strs := make([]string, len(modes))
	for i, m := range modes {
		strs[i] = string(m)
	}
	return strs
}
