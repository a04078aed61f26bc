package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hycracing/courseselect/internal/catalog"
	"github.com/hycracing/courseselect/internal/ui"
)

// ErrCatalogMismatch is returned by `catalog verify` when the catalog
// differs from the published card.
var ErrCatalogMismatch = errors.New("cli: catalog differs from the published card")

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "Print the course catalog as JSON",
	Args:  cobra.NoArgs,
	RunE:  runCourses,
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Course catalog maintenance",
}

var catalogVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Compare the catalog with the published course card",
	Args:  cobra.NoArgs,
	RunE:  runCatalogVerify,
}

func init() {
	rootCmd.AddCommand(coursesCmd)
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogVerifyCmd)

	coursesCmd.Flags().Int("indent", 2, "JSON indentation, 0 for one line")
	coursesCmd.Flags().Bool("playable", false, "Only list courses that can be sailed")
}

func runCourses(cmd *cobra.Command, _ []string) error {
	if err := requireCatalog(); err != nil {
		return err
	}

	cat := deps.Catalog
	if getBoolFlag(cmd, "playable") {
		playable, err := catalog.New(cat.Day(), cat.Playable())
		if err != nil {
			return err
		}
		cat = playable
	}

	out, err := cat.AsJSON(getIntFlag(cmd, "indent"))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}

func runCatalogVerify(cmd *cobra.Command, _ []string) error {
	if err := requireCatalog(); err != nil {
		return err
	}
	cat := deps.Catalog
	ref, err := catalog.LoadReference(cat.Day())
	if err != nil {
		return err
	}

	found := catalog.Compare(cat, ref)
	rendered, err := ui.RenderMarkdown(deps.Theme, deps.Headless, catalogReport(cat.Day(), cat.Len(), found))
	if err != nil {
		return err
	}
	if _, err := fmt.Fprint(cmd.OutOrStdout(), rendered); err != nil {
		return err
	}
	if len(found) > 0 {
		return fmt.Errorf("%w: %d courses", ErrCatalogMismatch, len(found))
	}
	return nil
}
