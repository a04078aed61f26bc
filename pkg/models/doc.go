// Package models provides the configuration types and enums shared by the
// courseselect packages.
//
// # Visibility Modes
//
// The visibility engine accepts three modes:
//   - hide: remove inactive routes and restore them when no route is active (default)
//   - delete: same behavior as hide
//   - keep-backup: snapshot inactive routes without removing them
//
// Use [VisibilityMode] and its constants:
//
//	mode := models.ModeHide
//	if mode.IsValid() && mode.Removes() {
//	    fmt.Println("routes will be hidden")
//	}
//
// # Configuration Types
//
// One struct per YAML section:
//   - [SignalKConfig]: server URL, token, timeouts and retries
//   - [VisibilityConfig]: visibility mode, auto-restore and excluded routes
//   - [CatalogConfig]: race day, route name prefix and external course table
//   - [SystemConfig]: logging and colour output
package models
