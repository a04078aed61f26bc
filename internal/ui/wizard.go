package ui

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/hycracing/courseselect/pkg/models"
)

// Headless default keys read by the setup wizard.
const (
	DefaultURLKey         = "url"
	DefaultTokenKey       = "token"
	DefaultModeKey        = "mode"
	DefaultDayKey         = "day"
	DefaultAutoRestoreKey = "auto_restore"
)

// WizardResult holds the answers of the setup wizard.
type WizardResult struct {
	URL         string
	Token       string
	Mode        models.VisibilityMode
	Day         string
	AutoRestore bool
}

// Wizard collects the settings written by `courseselect init`.
type Wizard struct {
	theme    *Theme
	headless *HeadlessManager
	prompt   Prompt
	days     []string
	initial  WizardResult
}

// NewWizard creates a wizard offering days and starting from initial.
func NewWizard(theme *Theme, hm *HeadlessManager, days []string, initial WizardResult) *Wizard {
	return &Wizard{
		theme:    theme,
		headless: hm,
		prompt:   NewPrompt(theme, hm),
		days:     days,
		initial:  initial,
	}
}

// Run asks every question in turn. In headless mode the answers come from
// the HeadlessManager defaults, falling back on the initial values.
// It respects context cancellation at every step.
func (w *Wizard) Run(ctx context.Context) (*WizardResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if w.headless.IsHeadless() && !w.headless.HasDefaults() {
		return nil, ErrHeadlessNoDefaults
	}

	result := w.initial

	steps := []func() error{
		func() (err error) {
			result.URL, err = w.prompt.Input("SignalK server URL",
				WithPlaceholder("http://localhost:3000"),
				WithDefault(w.initial.URL),
				WithDefaultKey(DefaultURLKey),
				WithValidation(validateServerURL))
			return err
		},
		func() error {
			token, err := w.prompt.Input("Access token (optional)",
				WithDefault(w.initial.Token),
				WithDefaultKey(DefaultTokenKey))
			if err != nil && !errors.Is(err, ErrHeadlessNoDefaults) {
				return err
			}
			result.Token = token
			return nil
		},
		func() error {
			mode, err := w.prompt.Select("Inactive routes", modeItems(),
				WithDefault(string(w.initial.Mode)),
				WithDefaultKey(DefaultModeKey))
			result.Mode = models.VisibilityMode(mode)
			return err
		},
		func() (err error) {
			result.Day, err = w.prompt.Select("Race day", dayItems(w.days),
				WithDefault(w.initial.Day),
				WithDefaultKey(DefaultDayKey))
			return err
		},
		func() error {
			restore, err := w.autoRestore()
			result.AutoRestore = restore
			return err
		},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := step(); err != nil {
			return nil, err
		}
	}
	if !result.Mode.IsValid() {
		return nil, fmt.Errorf("inactive routes: unknown mode %q", result.Mode)
	}
	return &result, nil
}

func (w *Wizard) autoRestore() (bool, error) {
	if w.headless.IsHeadless() {
		v, ok := w.headless.GetDefault(DefaultAutoRestoreKey)
		if !ok {
			return w.initial.AutoRestore, nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("auto_restore default %q: %w", v, err)
		}
		return b, nil
	}
	return w.prompt.Confirm("Restore hidden routes when no route is active?", w.initial.AutoRestore)
}

func validateServerURL(s string) error {
	u, err := url.Parse(s)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%q is not an http(s) URL", s)
	}
	return nil
}

func modeItems() []SelectItem {
	return []SelectItem{
		{Label: "hide", Value: string(models.ModeHide), Desc: "remove inactive routes, restore them later"},
		{Label: "delete", Value: string(models.ModeDelete), Desc: "same as hide"},
		{Label: "keep-backup", Value: string(models.ModeKeepBackup), Desc: "leave routes on the server, keep a copy"},
	}
}

func dayItems(days []string) []SelectItem {
	items := make([]SelectItem, len(days))
	for i, d := range days {
		items[i] = SelectItem{Label: d, Value: d}
	}
	return items
}
