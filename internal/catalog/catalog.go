// Package catalog provides the static course tables of the club: course
// number to ordered waypoint sequence and nominal length, the mark table
// and the published course card used for verification.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/brunoga/deep"
)

// Sentinel errors for catalog construction.
var (
	// ErrInvalidNumber indicates a course number that is not three ASCII digits.
	ErrInvalidNumber = errors.New("catalog: course number must be three digits")

	// ErrDuplicateNumber indicates two courses sharing a number.
	ErrDuplicateNumber = errors.New("catalog: duplicate course number")

	// ErrEmptyCourse indicates a course without waypoints.
	ErrEmptyCourse = errors.New("catalog: course has no waypoints")

	// ErrInvalidLength indicates a non-positive course length.
	ErrInvalidLength = errors.New("catalog: course length must be positive")

	// ErrUnknownDay indicates that no embedded table exists for a race day.
	ErrUnknownDay = errors.New("catalog: unknown race day")
)

// TestCourseNumber is the course used to exercise the system off the water.
const TestCourseNumber = "000"

// placeholderMarks are the marks of courses that exist on the card only as
// reserved numbers.
var placeholderMarks = map[string]bool{"1": true, "2": true, "3": true}

// Course is a pre-defined race course.
type Course struct {
	Number    string   `json:"number" yaml:"number"`
	Waypoints []string `json:"waypoints" yaml:"waypoints"`
	LengthNM  float64  `json:"length_nm" yaml:"length_nm"`
}

// Marks returns the parsed waypoint sequence.
func (c Course) Marks() []Waypoint {
	marks := make([]Waypoint, len(c.Waypoints))
	for i, token := range c.Waypoints {
		marks[i] = ParseWaypoint(token)
	}
	return marks
}

// MarkNames returns the waypoint names with rounding markers stripped.
func (c Course) MarkNames() []string {
	names := make([]string, len(c.Waypoints))
	for i, token := range c.Waypoints {
		names[i] = ParseWaypoint(token).Mark
	}
	return names
}

// IsPlaceholder reports whether the course is a reserved number without
// real marks.
func (c Course) IsPlaceholder() bool {
	for _, name := range c.MarkNames() {
		if placeholderMarks[name] {
			return true
		}
	}
	return false
}

// Playable reports whether the course can be sailed: it is neither a
// placeholder nor the test course.
func (c Course) Playable() bool {
	return !c.IsPlaceholder() && c.Number != TestCourseNumber
}

// Catalog is an immutable, ordered set of courses keyed by number.
type Catalog struct {
	day      string
	courses  []Course
	byNumber map[string]int
}

// New builds a catalog, validating that every number is three digits and
// unique, and that every course has waypoints and a positive length.
func New(day string, courses []Course) (*Catalog, error) {
	c := &Catalog{
		day:      strings.ToLower(day),
		courses:  make([]Course, 0, len(courses)),
		byNumber: make(map[string]int, len(courses)),
	}
	var errs []error
	for _, course := range courses {
		switch {
		case !ValidNumber(course.Number):
			errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidNumber, course.Number))
			continue
		case len(course.Waypoints) == 0:
			errs = append(errs, fmt.Errorf("%w: %s", ErrEmptyCourse, course.Number))
			continue
		case course.LengthNM <= 0:
			errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidLength, course.Number))
			continue
		}
		if _, dup := c.byNumber[course.Number]; dup {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateNumber, course.Number))
			continue
		}
		c.byNumber[course.Number] = len(c.courses)
		c.courses = append(c.courses, Course{
			Number:    course.Number,
			Waypoints: slices.Clone(course.Waypoints),
			LengthNM:  course.LengthNM,
		})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c, nil
}

// ValidNumber reports whether s is exactly three ASCII digits.
func ValidNumber(s string) bool {
	if len(s) != 3 {
		return false
	}
	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Day returns the race day the catalog belongs to.
func (c *Catalog) Day() string {
	return c.day
}

// Len returns the number of courses.
func (c *Catalog) Len() int {
	return len(c.courses)
}

// Lookup returns the course with the given number. The number must be
// three ASCII digits; any other input reports false.
func (c *Catalog) Lookup(number string) (Course, bool) {
	if !ValidNumber(number) {
		return Course{}, false
	}
	i, ok := c.byNumber[number]
	if !ok {
		return Course{}, false
	}
	return deep.MustCopy(c.courses[i]), true
}

// Courses returns a copy of every course in catalog order.
func (c *Catalog) Courses() []Course {
	return deep.MustCopy(c.courses)
}

// Playable returns the courses that can be sailed, in catalog order.
func (c *Catalog) Playable() []Course {
	var out []Course
	for _, course := range c.courses {
		if course.Playable() {
			out = append(out, deep.MustCopy(course))
		}
	}
	return out
}

// AsJSON serializes the full course list. An indent of zero or less
// produces compact output.
func (c *Catalog) AsJSON(indent int) (string, error) {
	var (
		data []byte
		err  error
	)
	if indent > 0 {
		data, err = json.MarshalIndent(c.courses, "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(c.courses)
	}
	if err != nil {
		return "", fmt.Errorf("marshal courses: %w", err)
	}
	return string(data), nil
}
