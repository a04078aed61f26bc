package catalog

import "strings"

// StarboardMarker suffixes a waypoint token that is rounded to starboard.
const StarboardMarker = "*"

// Rounding is the side a mark is left on.
type Rounding int

const (
	RoundPort Rounding = iota
	RoundStarboard
)

// String returns "port" or "starboard".
func (r Rounding) String() string {
	if r == RoundStarboard {
		return "starboard"
	}
	return "port"
}

// Waypoint is a parsed waypoint token: the mark name and its rounding.
type Waypoint struct {
	Mark     string   `json:"mark"`
	Rounding Rounding `json:"-"`
}

// ParseWaypoint splits a course token such as "V*" into mark "V" rounded
// to starboard. A token without the marker is rounded to port.
func ParseWaypoint(token string) Waypoint {
	if mark, ok := strings.CutSuffix(token, StarboardMarker); ok {
		return Waypoint{Mark: mark, Rounding: RoundStarboard}
	}
	return Waypoint{Mark: token, Rounding: RoundPort}
}

// Starboard reports whether the mark is rounded to starboard.
func (w Waypoint) Starboard() bool {
	return w.Rounding == RoundStarboard
}

// Token returns the course-table form of the waypoint.
func (w Waypoint) Token() string {
	if w.Starboard() {
		return w.Mark + StarboardMarker
	}
	return w.Mark
}

func (w Waypoint) String() string {
	return w.Token()
}
