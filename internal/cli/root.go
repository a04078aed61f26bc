package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hycracing/courseselect/internal/core/project"
	"github.com/hycracing/courseselect/pkg/version"
)

// skipConfigAnnotation marks commands that run without loading the
// project configuration.
const skipConfigAnnotation = "courseselect/skip-config"

var rootCmd = &cobra.Command{
	Use:   "courseselect",
	Short: "Course selection and route visibility for club racing on SignalK",
	Long: `courseselect picks the course of the day on a SignalK navigation server.

Enter a three digit course number on the keypad and the matching route
becomes the active route. While the watcher runs, every other route is
hidden from the chartplotter and restored when the course is cleared or
the watcher stops.`,
	Version:           version.GetVersion(),
	SilenceUsage:      true,
	PersistentPreRunE: loadProjectConfig,
}

// @MX:ANCHOR: [AUTO] Execute is the main entry point for the courseselect CLI
// @MX:REASON: [AUTO] called from cmd/courseselect/main.go and the cli tests
// Execute initializes dependencies and runs the root command.
func Execute() error {
	InitDependencies()
	defer func() { _ = deps.Close() }()
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("courseselect %s\n", version.GetVersion()))

	pf := rootCmd.PersistentFlags()
	pf.String("config-dir", "", "Configuration directory (default: ./.courseselect)")
	pf.String("url", "", "SignalK server URL, overrides the configuration")
	pf.String("log-level", "", "Log level: debug, info, warn or error")
	pf.Bool("no-color", false, "Disable colour output")
}

// loadProjectConfig runs before every command and loads the configuration
// of the enclosing project, or of the working directory outside one.
func loadProjectConfig(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[skipConfigAnnotation] == "true" {
		return nil
	}
	if deps == nil {
		return ErrNotInitialized
	}
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	root, err := project.FindProjectRootOrCurrent(cwd)
	if err != nil {
		return err
	}
	return deps.EnsureConfig(root, overridesFrom(cmd), cmd.ErrOrStderr())
}

// overridesFrom reads the persistent root flags.
func overridesFrom(cmd *cobra.Command) Overrides {
	return Overrides{
		ConfigDir: getStringFlag(cmd, "config-dir"),
		URL:       getStringFlag(cmd, "url"),
		LogLevel:  getStringFlag(cmd, "log-level"),
		NoColor:   getBoolFlag(cmd, "no-color"),
	}
}

// getStringFlag retrieves a string flag value from the command.
func getStringFlag(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		return ""
	}
	return val
}

// getBoolFlag retrieves a bool flag value from the command.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false
	}
	return val
}

// getIntFlag retrieves an int flag value from the command.
func getIntFlag(cmd *cobra.Command, name string) int {
	val, err := cmd.Flags().GetInt(name)
	if err != nil {
		return 0
	}
	return val
}

// requireCatalog ensures the catalog is loaded.
func requireCatalog() error {
	if deps == nil {
		return ErrNotInitialized
	}
	return deps.EnsureCatalog()
}

// requireClient ensures the catalog and the server client are ready.
func requireClient() error {
	if err := requireCatalog(); err != nil {
		return err
	}
	return deps.EnsureClient()
}
