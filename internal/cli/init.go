package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hycracing/courseselect/internal/catalog"
	"github.com/hycracing/courseselect/internal/config"
	"github.com/hycracing/courseselect/internal/ui"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the courseselect configuration",
	Long: `Ask for the server and the race day settings and write them to the
configuration sections under .courseselect/ (or --config-dir).

Examples:
  courseselect init                                    Interactive setup
  courseselect init --non-interactive --url http://boat.local:3000 --day tuesday`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().String("token", "", "SignalK access token")
	initCmd.Flags().String("mode", "", "What to do with inactive routes: hide, delete or keep-backup")
	initCmd.Flags().String("day", "", "Race day: "+fmt.Sprint(catalog.Days()))
	initCmd.Flags().Bool("auto-restore", true, "Restore hidden routes when no route is active")
	initCmd.Flags().Bool("non-interactive", false, "Skip the prompts; use flags and current settings")
}

func runInit(cmd *cobra.Command, _ []string) error {
	if deps == nil || deps.Settings == nil {
		return ErrNotInitialized
	}
	current := deps.Settings

	initial := ui.WizardResult{
		URL:         current.SignalK.URL,
		Token:       current.SignalK.Token,
		Mode:        current.Visibility.Mode,
		Day:         current.Catalog.Day,
		AutoRestore: current.Visibility.AutoRestore,
	}

	if getBoolFlag(cmd, "non-interactive") {
		deps.Headless.ForceHeadless(true)
		defaults := map[string]string{ui.DefaultURLKey: initial.URL}
		for flag, key := range map[string]string{"token": ui.DefaultTokenKey, "mode": ui.DefaultModeKey, "day": ui.DefaultDayKey} {
			if v := getStringFlag(cmd, flag); v != "" {
				defaults[key] = v
			}
		}
		if cmd.Flags().Changed("auto-restore") {
			defaults[ui.DefaultAutoRestoreKey] = strconv.FormatBool(getBoolFlag(cmd, "auto-restore"))
		}
		deps.Headless.SetDefaults(defaults)
	}

	result, err := ui.NewWizard(deps.Theme, deps.Headless, catalog.Days(), initial).Run(cmd.Context())
	if err != nil {
		return err
	}
	if err := saveWizardResult(deps.Config, result); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "configuration written to %s\n", deps.Config.ConfigDir())
	return err
}

// saveWizardResult merges the answers into the loaded sections and writes
// them to disk. Flag overrides of the current run are not persisted.
func saveWizardResult(m *config.ConfigManager, r *ui.WizardResult) error {
	cfg := m.Get()
	if cfg == nil {
		return config.ErrNotInitialized
	}

	sk := cfg.SignalK
	sk.URL = r.URL
	sk.Token = r.Token

	vis := cfg.Visibility
	vis.Mode = r.Mode
	vis.AutoRestore = r.AutoRestore

	cat := cfg.Catalog
	if cat.RoutePrefix == "" || cat.RoutePrefix == dayRoutePrefix(cat.Day) {
		cat.RoutePrefix = dayRoutePrefix(r.Day)
	}
	cat.Day = r.Day

	for name, section := range map[string]any{
		config.SectionSignalK:    sk,
		config.SectionVisibility: vis,
		config.SectionCatalog:    cat,
	} {
		if err := m.SetSection(name, section); err != nil {
			return fmt.Errorf("set %s section: %w", name, err)
		}
	}
	return m.Save()
}

// dayRoutePrefix is the conventional route prefix of a race day:
// HYC-Wed- for wednesday.
func dayRoutePrefix(day string) string {
	if len(day) < 3 {
		return config.DefaultRoutePrefix
	}
	return "HYC-" + cases.Title(language.English).String(day[:3]) + "-"
}
