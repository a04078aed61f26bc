package ui

import (
	"maps"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"

	"github.com/hycracing/courseselect/internal/defs"
)

// HeadlessManager decides whether prompts and the keypad run as
// full-screen programs or as plain line I/O, whether output is coloured,
// and holds the answers prompts fall back on without a terminal.
//
// Precedence for headless mode: ForceHeadless, then COURSESELECT_HEADLESS,
// then whether the input stream is a terminal.
type HeadlessManager struct {
	in, out  *os.File
	forced   *bool
	noColor  bool
	defaults map[string]string
}

// NewHeadlessManager returns a manager that inspects os.Stdin and os.Stdout.
func NewHeadlessManager() *HeadlessManager {
	return &HeadlessManager{in: os.Stdin, out: os.Stdout}
}

func isTTY(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// IsHeadless reports whether keys and answers come as plain lines.
// A chartplotter kiosk without a keyboard runs the keypad this way.
func (h *HeadlessManager) IsHeadless() bool {
	if h.forced != nil {
		return *h.forced
	}
	if v, err := strconv.ParseBool(os.Getenv(defs.EnvHeadless)); err == nil {
		return v
	}
	return !isTTY(h.in)
}

// ForceHeadless overrides detection in either direction.
func (h *HeadlessManager) ForceHeadless(force bool) {
	h.forced = &force
}

// ClearForce reverts to detection.
func (h *HeadlessManager) ClearForce() {
	h.forced = nil
}

// SetNoColor records the no_color setting or --no-color flag.
func (h *HeadlessManager) SetNoColor(noColor bool) {
	h.noColor = noColor
}

// ColorEnabled reports whether styled output should be written. Colour is
// off when configured off, when NO_COLOR is set, when running headless, or
// when stdout is not a terminal.
func (h *HeadlessManager) ColorEnabled() bool {
	if h.noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	if h.IsHeadless() {
		return false
	}
	if h.forced != nil {
		return true
	}
	return isTTY(h.out)
}

// SetDefaults stores the answers used in headless mode, keyed by prompt
// ("url", "token", "mode", "day", "auto_restore", "confirm").
func (h *HeadlessManager) SetDefaults(defaults map[string]string) {
	if len(defaults) == 0 {
		h.defaults = nil
		return
	}
	h.defaults = maps.Clone(defaults)
}

// GetDefault returns the headless answer for key.
func (h *HeadlessManager) GetDefault(key string) (string, bool) {
	v, ok := h.defaults[key]
	return v, ok
}

// HasDefaults reports whether any headless answer is set.
func (h *HeadlessManager) HasDefaults() bool {
	return len(h.defaults) > 0
}
