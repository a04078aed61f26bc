package statusline

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// idleText is rendered when no route is active.
const idleText = "no course"

// barWidth is the number of cells in the leg progress bar.
const barWidth = 8

// Renderer formats StatusData into a single-line string.
type Renderer struct {
	separator      string
	noColor        bool
	mutedStyle     lipgloss.Style
	starboardStyle lipgloss.Style
	segmentConfig  map[string]bool
}

// NewRenderer creates a Renderer. When segmentConfig is nil or empty, all
// segments of the selected mode are displayed.
func NewRenderer(noColor bool, segmentConfig map[string]bool) *Renderer {
	r := &Renderer{
		separator:     " | ",
		noColor:       noColor,
		segmentConfig: segmentConfig,
	}
	if noColor {
		r.mutedStyle = lipgloss.NewStyle()
		r.starboardStyle = lipgloss.NewStyle()
		return r
	}
	r.mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7A7A7A"))
	r.starboardStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2E9E48"))
	return r
}

// Render formats data for mode. A nil data renders the idle text.
func (r *Renderer) Render(data *StatusData, mode Mode) string {
	if data == nil {
		return r.mutedStyle.Render(idleText)
	}

	var sections []string
	switch mode {
	case ModeMinimal:
		sections = r.renderMinimal(data)
	case ModeVerbose:
		sections = r.renderVerbose(data)
	default:
		sections = r.renderDefault(data)
	}

	filtered := make([]string, 0, len(sections))
	for _, s := range sections {
		if s != "" {
			filtered = append(filtered, s)
		}
	}
	if len(filtered) == 0 {
		return r.mutedStyle.Render(idleText)
	}
	return strings.Join(filtered, r.separator)
}

// isSegmentEnabled reports whether key is rendered. Keys missing from the
// configuration are enabled.
func (r *Renderer) isSegmentEnabled(key string) bool {
	if len(r.segmentConfig) == 0 {
		return true
	}
	enabled, exists := r.segmentConfig[key]
	if !exists {
		return true
	}
	return enabled
}

func (r *Renderer) renderMinimal(data *StatusData) []string {
	return []string{r.courseSegment(data), r.nextSegment(data)}
}

func (r *Renderer) renderDefault(data *StatusData) []string {
	return []string{
		r.courseSegment(data),
		r.marksSegment(data),
		r.legsSegment(data),
		r.nextSegment(data),
	}
}

func (r *Renderer) renderVerbose(data *StatusData) []string {
	sections := r.renderDefault(data)
	if r.isSegmentEnabled(SegmentLength) && data.LengthNM > 0 {
		sections = append(sections, fmt.Sprintf("%.1f NM", data.LengthNM))
	}
	if r.isSegmentEnabled(SegmentRoute) && data.RouteName != "" {
		sections = append(sections, r.mutedStyle.Render(data.RouteName))
	}
	return sections
}

func (r *Renderer) courseSegment(data *StatusData) string {
	if !r.isSegmentEnabled(SegmentCourse) {
		return ""
	}
	if data.Number == "" {
		return "⛵ " + data.RouteName
	}
	return "⛵ " + data.Number
}

func (r *Renderer) marksSegment(data *StatusData) string {
	if !r.isSegmentEnabled(SegmentMarks) || len(data.Marks) == 0 {
		return ""
	}
	parts := make([]string, len(data.Marks))
	for i, wp := range data.Marks {
		switch {
		case r.noColor:
			parts[i] = wp.Token()
		case wp.Starboard():
			parts[i] = r.starboardStyle.Render(wp.Mark)
		default:
			parts[i] = wp.Mark
		}
	}
	return strings.Join(parts, " ")
}

func (r *Renderer) nextSegment(data *StatusData) string {
	if !r.isSegmentEnabled(SegmentNext) || data.NextMark == "" {
		return ""
	}
	return "➜ " + data.NextMark
}

// legsSegment renders the leg progress as a bar graph.
// Format: ███░░░░░ 2/5
func (r *Renderer) legsSegment(data *StatusData) string {
	if !r.isSegmentEnabled(SegmentLegs) {
		return ""
	}
	leg, total, ok := data.Leg()
	if !ok {
		return ""
	}
	filled := (leg - 1) * barWidth / total
	bar := strings.Repeat("█", filled) + r.mutedStyle.Render(strings.Repeat("░", barWidth-filled))
	return fmt.Sprintf("%s %d/%d", bar, leg, total)
}
