// Package ui holds the terminal front end: the keypad program, progress
// output, prompts and report rendering. Every component has a headless
// rendition used when stdin is not a terminal.
package ui

import "errors"

var (
	// ErrCancelled is returned when the user aborts a prompt.
	ErrCancelled = errors.New("ui: cancelled by user")

	// ErrHeadlessNoDefaults is returned when a headless prompt has no value to fall back on.
	ErrHeadlessNoDefaults = errors.New("ui: headless mode requires default values")
)

// Progress creates progress indicators.
type Progress interface {
	Start(title string, total int) ProgressBar
	Spinner(title string) Spinner
}

// ProgressBar is a determinate progress indicator.
type ProgressBar interface {
	Increment(n int)
	SetTitle(title string)
	Done()
}

// Spinner is an indeterminate progress indicator.
type Spinner interface {
	SetTitle(title string)
	Stop()
}

// Prompt asks single questions.
type Prompt interface {
	Confirm(label string, defaultVal bool) (bool, error)
	Input(label string, opts ...InputOption) (string, error)
	Select(label string, items []SelectItem, opts ...InputOption) (string, error)
}

// SelectItem is one choice of a Select prompt.
type SelectItem struct {
	Label string
	Value string
	Desc  string
}

// InputOption configures an Input or Select prompt.
type InputOption func(*inputConfig)

type inputConfig struct {
	placeholder string
	defaultVal  string
	key         string
	validate    func(string) error
}

// WithPlaceholder sets the placeholder shown in an empty input.
func WithPlaceholder(s string) InputOption {
	return func(c *inputConfig) { c.placeholder = s }
}

// WithDefault prefills the input and is returned when headless.
func WithDefault(s string) InputOption {
	return func(c *inputConfig) { c.defaultVal = s }
}

// WithDefaultKey names the HeadlessManager default consulted when headless.
func WithDefaultKey(key string) InputOption {
	return func(c *inputConfig) { c.key = key }
}

// WithValidation rejects input for which fn returns an error.
func WithValidation(fn func(string) error) InputOption {
	return func(c *inputConfig) { c.validate = fn }
}
