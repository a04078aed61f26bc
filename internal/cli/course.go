package cli

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hycracing/courseselect/internal/course"
	"github.com/hycracing/courseselect/internal/statusline"
	"github.com/hycracing/courseselect/internal/ui"
)

var selectCmd = &cobra.Command{
	Use:   "select NNN",
	Short: "Activate the route of a course",
	Long: `Activate the route of a course by its three digit number, without the
keypad. The number must be a playable course of the configured day.`,
	Args: cobra.ExactArgs(1),
	RunE: runSelect,
}

var markCmd = &cobra.Command{
	Use:   "mark [NAME]",
	Short: "Steer to a single mark",
	Long: `Set the waypoint named NAME as the destination. With --clear the
destination and the active route are cleared instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMark,
}

var finishCmd = &cobra.Command{
	Use:   "finish",
	Short: "Move the finish mark to the vessel position",
	Long: `Move the finish mark (the waypoint named F or described F-FINISH) to the
current vessel position. Asks for confirmation unless --yes is given.`,
	Args: cobra.NoArgs,
	RunE: runFinish,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active course and destination",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(markCmd)
	rootCmd.AddCommand(finishCmd)
	rootCmd.AddCommand(statusCmd)

	markCmd.Flags().Bool("clear", false, "Clear the destination and the active route")
	finishCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	statusCmd.Flags().Bool("line", false, "Print a single status line for tmux or a shell prompt")
	statusCmd.Flags().String("mode", string(statusline.ModeDefault), "Status line mode: minimal, default or verbose")
	statusCmd.Flags().StringSlice("hide", nil, "Status line segments to hide: "+strings.Join(statusline.Segments, ", "))
}

func runSelect(cmd *cobra.Command, args []string) error {
	if err := requireClient(); err != nil {
		return err
	}
	activator := course.NewActivator(deps.Client, deps.Catalog, deps.CourseSettings())
	c, err := activator.SelectNumber(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "course %s active: %s (%.1f NM)\n",
		c.Number, ui.FormatMarks(deps.Theme, c.Marks()), c.LengthNM)
	return err
}

func runMark(cmd *cobra.Command, args []string) error {
	clearAll := getBoolFlag(cmd, "clear")
	if clearAll == (len(args) == 1) {
		return errors.New("give a mark name or --clear")
	}
	if err := requireClient(); err != nil {
		return err
	}

	marks := course.NewMarkSelector(deps.Client, deps.CourseSettings())
	out := cmd.OutOrStdout()
	if clearAll {
		if err := marks.Clear(cmd.Context()); err != nil {
			return err
		}
		_, err := fmt.Fprintln(out, "course cleared")
		return err
	}

	name := strings.TrimSpace(args[0])
	if err := marks.Select(cmd.Context(), name); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "steering to %s\n", name)
	return err
}

func runFinish(cmd *cobra.Command, _ []string) error {
	if err := requireClient(); err != nil {
		return err
	}

	if !getBoolFlag(cmd, "yes") {
		ok, err := ui.NewPrompt(deps.Theme, deps.Headless).Confirm("Move the finish mark to the boat?", false)
		if err != nil {
			if errors.Is(err, ui.ErrCancelled) {
				return nil
			}
			return err
		}
		if !ok {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "finish mark not moved")
			return err
		}
	}

	marks := course.NewMarkSelector(deps.Client, deps.CourseSettings())
	w, err := marks.MoveFinish(cmd.Context())
	if err != nil {
		return err
	}
	pos, _ := w.Location()
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "finish mark %s moved to %.5f, %.5f\n", w.Name, pos.Latitude, pos.Longitude)
	return err
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if err := requireClient(); err != nil {
		return err
	}
	activator := course.NewActivator(deps.Client, deps.Catalog, deps.CourseSettings())
	st, err := activator.ActiveCourse(cmd.Context())
	if err != nil {
		return err
	}
	if getBoolFlag(cmd, "line") {
		return printStatusLine(cmd, st)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), renderStatus(deps.Theme, st))
	return err
}

func printStatusLine(cmd *cobra.Command, st course.Status) error {
	hidden, _ := cmd.Flags().GetStringSlice("hide")
	segments := make(map[string]bool, len(hidden))
	for _, key := range hidden {
		if !slices.Contains(statusline.Segments, key) {
			return fmt.Errorf("unknown status line segment %q", key)
		}
		segments[key] = false
	}
	r := statusline.NewRenderer(deps.Theme.NoColor, segments)
	line := r.Render(statusline.FromStatus(st), statusline.ParseMode(getStringFlag(cmd, "mode")))
	_, err := fmt.Fprintln(cmd.OutOrStdout(), line)
	return err
}
