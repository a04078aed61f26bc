// Package statusline renders the active course as a single line for tmux,
// shell prompts and other status bars.
package statusline

import (
	"github.com/hycracing/courseselect/internal/catalog"
	"github.com/hycracing/courseselect/internal/course"
)

// Mode selects how much of the status line is rendered.
type Mode string

const (
	// ModeMinimal shows the course number and next mark only.
	ModeMinimal Mode = "minimal"
	// ModeDefault adds the mark sequence and leg progress.
	ModeDefault Mode = "default"
	// ModeVerbose adds the course length and route name.
	ModeVerbose Mode = "verbose"
)

// Segment keys accepted by NewRenderer's segment configuration.
const (
	SegmentCourse = "course"
	SegmentMarks  = "marks"
	SegmentLegs   = "legs"
	SegmentNext   = "next"
	SegmentLength = "length"
	SegmentRoute  = "route"
)

// Segments lists every segment key in render order.
var Segments = []string{SegmentCourse, SegmentMarks, SegmentLegs, SegmentNext, SegmentLength, SegmentRoute}

// ParseMode returns the mode named s, or ModeDefault for anything else.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeMinimal, ModeVerbose:
		return Mode(s)
	default:
		return ModeDefault
	}
}

// StatusData is everything the renderer needs for one line.
type StatusData struct {
	Number    string
	Marks     []catalog.Waypoint
	LengthNM  float64
	RouteName string
	NextMark  string
}

// FromStatus converts the activator's view of the vessel into StatusData.
// It returns nil when no route is active.
func FromStatus(st course.Status) *StatusData {
	if !st.HasRoute() {
		return nil
	}
	data := &StatusData{
		Number:    st.Number,
		RouteName: st.RouteName,
		NextMark:  st.DestinationName,
	}
	if st.Course != nil {
		data.Marks = st.Course.Marks()
		data.LengthNM = st.Course.LengthNM
	}
	return data
}

// Leg reports the 1-based leg being sailed and the number of legs. The
// leg is found from the first mark after the start matching NextMark, so
// courses that visit a mark twice report the earlier leg.
func (d *StatusData) Leg() (leg, total int, ok bool) {
	if len(d.Marks) < 2 || d.NextMark == "" {
		return 0, 0, false
	}
	total = len(d.Marks) - 1
	for i := 1; i < len(d.Marks); i++ {
		if d.Marks[i].Mark == d.NextMark {
			return i, total, true
		}
	}
	return 0, total, false
}
