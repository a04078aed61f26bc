// Package keypad implements progressive entry of a three-digit course
// number. Each level only accepts the digits that lead to numbers on the
// course card, so an entry can only ever grow into a catalogued number.
package keypad

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/hycracing/courseselect/internal/catalog"
)

var (
	// ErrCourseNotFound is reported when a complete entry names no sailable course.
	ErrCourseNotFound = errors.New("keypad: course not found")

	// ErrActivationFailed matches every *ActivationError.
	ErrActivationFailed = errors.New("keypad: activation failed")
)

// ActivationError reports that a course was found but could not be made
// active on the navigation server.
type ActivationError struct {
	Number string
	Err    error
}

func (e *ActivationError) Error() string {
	return fmt.Sprintf("keypad: activate course %s: %v", e.Number, e.Err)
}

func (e *ActivationError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrActivationFailed) true for any ActivationError.
func (e *ActivationError) Is(target error) bool {
	return target == ErrActivationFailed
}

// Lookuper resolves course numbers. *catalog.Catalog implements it.
type Lookuper interface {
	Lookup(number string) (catalog.Course, bool)
}

// Activator makes a course the active route.
type Activator interface {
	Activate(ctx context.Context, course catalog.Course) error
}

// Result describes the effect of one key press.
type Result struct {
	// Accepted is false when the key was not active and nothing changed.
	Accepted  bool
	// Submitted is true when enter activated Course.
	Submitted bool
	Course    catalog.Course
}

// Machine is the keypad state. The zero value is not usable; call New.
type Machine struct {
	mu        sync.Mutex
	courses   Lookuper
	activator Activator
	logger    *slog.Logger

	level   int
	entered string
	row     int
}

// Option configures a Machine.
type Option func(*Machine)

// WithLogger sets the logger used for submit outcomes.
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) { m.logger = l }
}

// New returns a machine at Level0.
func New(courses Lookuper, activator Activator, opts ...Option) *Machine {
	m := &Machine{
		courses:   courses,
		activator: activator,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// @MX:ANCHOR: [AUTO] Press is the single entry point for keypad input
// @MX:REASON: [AUTO] called by the TUI model, the headless reader and tests
// Press applies one key. Keys outside the active set are ignored and
// reported with Accepted false and a nil error. Enter on a complete entry
// looks the course up and activates it; the machine resets afterwards
// whether or not that succeeded.
func (m *Machine) Press(ctx context.Context, key Key) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.acceptsLocked(key) {
		return Result{}, nil
	}

	switch key {
	case KeyClear:
		m.resetLocked()
		return Result{Accepted: true}, nil
	case KeyEnter:
		return m.submitLocked(ctx)
	}

	m.pushDigitLocked(key)
	return Result{Accepted: true}, nil
}

// Clear resets the entry to Level0.
func (m *Machine) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
}

// Entry returns the digits entered so far.
func (m *Machine) Entry() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entered
}

// Level returns the current level, 0 through 3.
func (m *Machine) Level() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.level
}

// Active returns the keys highlighted at the current level. Clear is
// accepted at every level even when not listed.
func (m *Machine) Active() []Key {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(levelKeys[m.row])
}

func (m *Machine) acceptsLocked(key Key) bool {
	switch key {
	case KeyClear:
		return true
	case KeyEnter:
		return len(m.entered) == entryLength
	}
	return slices.Contains(levelKeys[m.row], key)
}

func (m *Machine) pushDigitLocked(key Key) {
	d := string(key)
	if m.level == 0 {
		switch key {
		case Key3:
			m.entered, m.level, m.row = d, 1, rowAfterLeadingThree
		case Key4, Key5:
			// 4xx and 5xx only exist as 40x and 50x.
			m.entered, m.level, m.row = d+"0", 2, 2
		default:
			m.entered, m.level, m.row = d, 1, 1
		}
		return
	}
	m.entered += d
	m.level++
	m.row = m.level
}

func (m *Machine) submitLocked(ctx context.Context) (Result, error) {
	number := m.entered
	defer m.resetLocked()

	course, ok := m.courses.Lookup(number)
	if !ok || course.IsPlaceholder() {
		m.logger.Info("course not found", "course", number)
		return Result{Accepted: true}, fmt.Errorf("%w: %s", ErrCourseNotFound, number)
	}

	if err := m.activator.Activate(ctx, course); err != nil {
		m.logger.Warn("course activation failed", "course", number, "error", err)
		return Result{Accepted: true, Course: course}, &ActivationError{Number: number, Err: err}
	}

	m.logger.Info("course activated", "course", number)
	return Result{Accepted: true, Submitted: true, Course: course}, nil
}

func (m *Machine) resetLocked() {
	m.level = 0
	m.entered = ""
	m.row = rowInitial
}
