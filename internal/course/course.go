// Package course turns catalog courses into navigation server actions:
// activating the route of a course, steering to a single mark, moving the
// finish mark, and bulk maintenance of the course routes.
package course

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hycracing/courseselect/internal/signalk"
)

// Sentinel errors for course operations.
var (
	// ErrRouteNotFound indicates that no server route matches a course.
	ErrRouteNotFound = errors.New("course: no route for course")

	// ErrInvalidNumber indicates a course number that is not three digits.
	ErrInvalidNumber = errors.New("course: course number must be three digits")

	// ErrUnknownCourse indicates a number missing from the catalog.
	ErrUnknownCourse = errors.New("course: course not in catalog")

	// ErrNotPlayable indicates a placeholder or test course.
	ErrNotPlayable = errors.New("course: course cannot be sailed")

	// ErrMarkNotFound indicates that no waypoint carries a mark name.
	ErrMarkNotFound = errors.New("course: mark not found")

	// ErrFinishNotFound indicates that no finish waypoint exists.
	ErrFinishNotFound = errors.New("course: finish mark not found")
)

// DefaultRoutePrefix is prepended to course numbers to name their routes.
const DefaultRoutePrefix = "HYC-Wed-"

// Finish mark identification.
const (
	FinishMarkName        = "F"
	FinishMarkDescription = "F-FINISH"
)

// Server is the part of the navigation server used by course operations.
type Server interface {
	ListRoutes(ctx context.Context) (*signalk.RouteIndex, error)
	PutRoute(ctx context.Context, id string, r signalk.RouteRecord) error
	ListWaypoints(ctx context.Context) (*signalk.WaypointIndex, error)
	PutWaypoint(ctx context.Context, id string, w signalk.WaypointRecord) error
	ResolveWaypoint(ctx context.Context, name string) (string, error)
	SetActiveRoute(ctx context.Context, id string) error
	SetDestination(ctx context.Context, waypointID string) error
	ClearCourse(ctx context.Context) error
	ActiveRoute(ctx context.Context) (string, error)
	Destination(ctx context.Context) (string, error)
	Position(ctx context.Context) (signalk.Position, error)
}

// Settings are shared by the course operations.
type Settings struct {
	// Day is the race day, used in the hyc-<Day>-NNN route names.
	Day string
	// RoutePrefix names created routes; DefaultRoutePrefix when empty.
	RoutePrefix string
	Logger      *slog.Logger
}

func (s Settings) withDefaults() Settings {
	if s.RoutePrefix == "" {
		s.RoutePrefix = DefaultRoutePrefix
	}
	if s.Day == "" {
		s.Day = "wednesday"
	}
	if s.Logger == nil {
		s.Logger = slog.Default()
	}
	return s
}

// RouteName returns the name of the route created for a course.
func RouteName(prefix, number string) string {
	return prefix + number
}

// RouteNameCandidates lists, in order of preference, the route names that
// identify a course on the server.
func RouteNameCandidates(day, prefix, number string) []string {
	candidates := []string{
		"hyc-" + cases.Title(language.English).String(strings.ToLower(day)) + "-" + number,
		number,
	}
	if n, err := strconv.Atoi(number); err == nil {
		candidates = append(candidates, strconv.Itoa(n))
	}
	candidates = append(candidates,
		"Course "+number,
		strings.TrimLeft(number, "0"),
		prefix+number,
	)

	seen := make(map[string]bool, len(candidates))
	out := candidates[:0]
	for _, c := range candidates {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

var courseNumberPattern = regexp.MustCompile(`(?:^|[^0-9])([0-9]{3})$`)

// ExtractCourseNumber finds the course number in a route name such as
// "241", "hyc-Wednesday-241", "HYC-Wed-241" or "Course 241".
func ExtractCourseNumber(name string) (string, bool) {
	m := courseNumberPattern.FindStringSubmatch(strings.TrimSpace(name))
	if m == nil {
		return "", false
	}
	return m[1], true
}
