package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hycracing/courseselect/internal/course"
	"github.com/hycracing/courseselect/internal/ui"
)

// ErrRoutesMismatch is returned by `routes verify` when a course route is
// missing or differs from the catalog.
var ErrRoutesMismatch = errors.New("cli: course routes differ from the catalog")

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Bulk route maintenance on the server",
}

var routesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the routes on the server",
	Args:  cobra.NoArgs,
	RunE:  runRoutesList,
}

var routesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a route for every playable course that has none",
	Long: `Create a route named <prefix>NNN for every playable course of the day.
Courses that already have a route are left alone. The waypoints must exist
on the server under the mark names of the catalog.`,
	Args: cobra.NoArgs,
	RunE: runRoutesCreate,
}

var routesRenameCmd = &cobra.Command{
	Use:   "rename",
	Short: "Rename routes named with a bare course number to <prefix>NNN",
	Args:  cobra.NoArgs,
	RunE:  runRoutesRename,
}

var routesVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the course routes against the catalog",
	Args:  cobra.NoArgs,
	RunE:  runRoutesVerify,
}

func init() {
	rootCmd.AddCommand(routesCmd)
	routesCmd.AddCommand(routesListCmd, routesCreateCmd, routesRenameCmd, routesVerifyCmd)
}

func runRoutesList(cmd *cobra.Command, _ []string) error {
	if err := requireClient(); err != nil {
		return err
	}
	routes, err := deps.Client.ListRoutes(cmd.Context())
	if err != nil {
		return err
	}
	rendered, err := ui.RenderMarkdown(deps.Theme, deps.Headless, routesTable(routes.All()))
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), rendered)
	return err
}

func runRoutesCreate(cmd *cobra.Command, _ []string) error {
	if err := requireClient(); err != nil {
		return err
	}

	progress := ui.NewProgress(deps.Theme, deps.Headless)
	var bar ui.ProgressBar
	builder := course.NewRouteBuilder(deps.Client, deps.CourseSettings())
	// Calls are serialized by CreateAll; the bar starts once the number of
	// missing routes is known.
	report, err := builder.CreateAll(cmd.Context(), deps.Catalog.Playable(), func(_, total int, number string) {
		if bar == nil {
			bar = progress.Start("Creating routes", total)
		}
		bar.SetTitle("Course " + number)
		bar.Increment(1)
	})
	if bar != nil {
		bar.Done()
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, r := range report.Created {
		_, _ = fmt.Fprintf(out, "created %s (%s)\n", r.Name, r.RouteID)
	}
	_, _ = fmt.Fprintf(out, "%d created, %d already present, %d failed\n",
		len(report.Created), len(report.Existing), len(report.Failed))
	return report.Err()
}

func runRoutesRename(cmd *cobra.Command, _ []string) error {
	if err := requireClient(); err != nil {
		return err
	}
	builder := course.NewRouteBuilder(deps.Client, deps.CourseSettings())
	renamed, err := builder.RenameNumeric(cmd.Context())
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d routes renamed\n", len(renamed))
	return err
}

func runRoutesVerify(cmd *cobra.Command, _ []string) error {
	if err := requireClient(); err != nil {
		return err
	}
	s := deps.CourseSettings()
	report, err := course.NewRouteBuilder(deps.Client, s).Verify(cmd.Context(), deps.Catalog)
	if err != nil {
		return err
	}

	prefix := s.RoutePrefix
	if prefix == "" {
		prefix = course.DefaultRoutePrefix
	}
	rendered, err := ui.RenderMarkdown(deps.Theme, deps.Headless, routesVerifyReport(prefix, report))
	if err != nil {
		return err
	}
	if _, err := fmt.Fprint(cmd.OutOrStdout(), rendered); err != nil {
		return err
	}
	if !report.OK() {
		return fmt.Errorf("%w: %d mismatched, %d missing", ErrRoutesMismatch, len(report.Mismatched), len(report.Missing))
	}
	return nil
}
