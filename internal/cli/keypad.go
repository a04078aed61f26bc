package cli

import (
	"github.com/spf13/cobra"

	"github.com/hycracing/courseselect/internal/course"
	"github.com/hycracing/courseselect/internal/keypad"
	"github.com/hycracing/courseselect/internal/ui"
)

var keypadCmd = &cobra.Command{
	Use:   "keypad",
	Short: "Enter course numbers on the keypad",
	Long: `Open the course keypad. Only digits that can still lead to a course of
the day are active. Enter activates the course route, C clears the entry
and q quits.

Headless (--headless, or stdin not a terminal) keys are read one line at a
time from stdin: a digit, "c" to clear, an empty line to submit.`,
	Args: cobra.NoArgs,
	RunE: runKeypad,
}

func init() {
	rootCmd.AddCommand(keypadCmd)

	keypadCmd.Flags().Bool("headless", false, "Read keys from stdin lines instead of the terminal UI")
}

func runKeypad(cmd *cobra.Command, _ []string) error {
	if err := requireClient(); err != nil {
		return err
	}

	activator := course.NewActivator(deps.Client, deps.Catalog, deps.CourseSettings())
	machine := keypad.New(deps.Catalog, activator, keypad.WithLogger(deps.Logger))

	if getBoolFlag(cmd, "headless") || deps.Headless.IsHeadless() {
		return ui.RunHeadlessKeypad(cmd.Context(), machine, deps.Theme, cmd.InOrStdin(), cmd.OutOrStdout())
	}
	return ui.RunKeypad(cmd.Context(), machine, deps.Theme)
}
