package cli

import (
	"fmt"
	"strings"

	"github.com/hycracing/courseselect/internal/catalog"
	"github.com/hycracing/courseselect/internal/course"
	"github.com/hycracing/courseselect/internal/signalk"
	"github.com/hycracing/courseselect/internal/ui"
)

// renderStatus draws the active course card.
func renderStatus(theme *ui.Theme, st course.Status) string {
	var b strings.Builder
	b.WriteString(theme.Title().Render("Active course"))
	b.WriteString("\n")

	switch {
	case !st.HasRoute():
		b.WriteString(theme.Muted().Render("no active route"))
	case st.Course != nil:
		fmt.Fprintf(&b, "course %s  %.1f NM\n", st.Number, st.Course.LengthNM)
		b.WriteString(ui.FormatMarks(theme, st.Course.Marks()))
	default:
		fmt.Fprintf(&b, "route %s", nonEmpty(st.RouteName, st.RouteID))
	}

	b.WriteString("\n")
	if st.Destination == "" {
		b.WriteString(theme.Muted().Render("no destination"))
	} else {
		fmt.Fprintf(&b, "next mark %s", st.DestinationName)
	}
	return theme.Card().Render(b.String())
}

// catalogReport is the markdown report of a catalog check against the
// published course card.
func catalogReport(day string, checked int, found []catalog.Discrepancy) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Course catalog: %s\n\n", day)
	if len(found) == 0 {
		fmt.Fprintf(&b, "All %d courses match the published card.\n", checked)
		return b.String()
	}
	fmt.Fprintf(&b, "%d of %d courses differ from the published card.\n\n", len(found), checked)
	b.WriteString("| course | problem | catalog | card |\n|---|---|---|---|\n")
	for _, d := range found {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", d.Number, d.Kind, cell(d.Got), cell(d.Want))
	}
	return b.String()
}

// routesVerifyReport is the markdown report of a route check.
func routesVerifyReport(prefix string, r course.VerifyReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Course routes: %s\n\n", prefix)
	fmt.Fprintf(&b, "- matched: %d\n- mismatched: %d\n- missing: %d\n", len(r.Matched), len(r.Mismatched), len(r.Missing))

	if len(r.Mismatched) > 0 {
		b.WriteString("\n## Mismatched\n\n| course | route | expected | on server |\n|---|---|---|---|\n")
		for _, m := range r.Mismatched {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", m.Number, m.RouteID, strings.Join(m.Want, " "), strings.Join(m.Got, " "))
		}
	}
	if len(r.Missing) > 0 {
		b.WriteString("\n## Missing\n\n")
		b.WriteString(strings.Join(r.Missing, ", "))
		b.WriteString("\n")
	}
	return b.String()
}

// routesTable is the markdown listing of the server's routes.
func routesTable(routes []signalk.RouteRecord) string {
	var b strings.Builder
	b.WriteString("| id | name | points |\n|---|---|---|\n")
	for _, r := range routes {
		fmt.Fprintf(&b, "| %s | %s | %d |\n", r.ID, cell(r.Name), len(r.Hrefs()))
	}
	return b.String()
}

func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", `\|`)
}

func nonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
