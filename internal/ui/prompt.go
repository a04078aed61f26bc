package ui

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
)

// DefaultConfirmKey is the HeadlessManager default answering Confirm.
const DefaultConfirmKey = "confirm"

// promptImpl implements Prompt with huh forms.
type promptImpl struct {
	theme    *Theme
	headless *HeadlessManager
}

// NewPrompt creates a Prompt backed by the given theme and headless manager.
func NewPrompt(theme *Theme, hm *HeadlessManager) Prompt {
	return &promptImpl{theme: theme, headless: hm}
}

// Confirm asks a yes/no question. Headless, it answers with the "confirm"
// default when one is set and defaultVal otherwise.
func (p *promptImpl) Confirm(label string, defaultVal bool) (bool, error) {
	if p.headless.IsHeadless() {
		if v, ok := p.headless.GetDefault(DefaultConfirmKey); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return false, fmt.Errorf("confirm default %q: %w", v, err)
			}
			return b, nil
		}
		return defaultVal, nil
	}
	return p.confirmInteractive(label, defaultVal)
}

func (p *promptImpl) confirmInteractive(label string, defaultVal bool) (bool, error) {
	value := defaultVal
	field := huh.NewConfirm().
		Title(label).
		Affirmative("Yes").
		Negative("No").
		Value(&value)
	if err := p.run(field); err != nil {
		return false, fmt.Errorf("confirm: %w", err)
	}
	return value, nil
}

// Input asks for one line of text.
func (p *promptImpl) Input(label string, opts ...InputOption) (string, error) {
	cfg := buildInputConfig(opts)
	if p.headless.IsHeadless() {
		return p.headlessValue(cfg)
	}
	return p.inputInteractive(label, cfg)
}

func (p *promptImpl) inputInteractive(label string, cfg inputConfig) (string, error) {
	value := cfg.defaultVal
	field := huh.NewInput().
		Title(label).
		Placeholder(cfg.placeholder).
		Value(&value)
	if cfg.validate != nil {
		field = field.Validate(cfg.validate)
	}
	if err := p.run(field); err != nil {
		return "", fmt.Errorf("prompt: %w", err)
	}
	return value, nil
}

// Select asks for one of items. Headless, it answers with the configured
// default, or the first item.
func (p *promptImpl) Select(label string, items []SelectItem, opts ...InputOption) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("select %q: no items", label)
	}
	cfg := buildInputConfig(opts)
	if p.headless.IsHeadless() {
		v, err := p.headlessValue(cfg)
		if errors.Is(err, ErrHeadlessNoDefaults) {
			return items[0].Value, nil
		}
		return v, err
	}
	return p.selectInteractive(label, items, cfg)
}

func (p *promptImpl) selectInteractive(label string, items []SelectItem, cfg inputConfig) (string, error) {
	value := cfg.defaultVal
	options := make([]huh.Option[string], len(items))
	for i, it := range items {
		key := it.Label
		if it.Desc != "" {
			key = it.Label + " - " + it.Desc
		}
		options[i] = huh.NewOption(key, it.Value)
	}
	field := huh.NewSelect[string]().
		Title(label).
		Options(options...).
		Value(&value)
	if err := p.run(field); err != nil {
		return "", fmt.Errorf("select: %w", err)
	}
	return value, nil
}

func (p *promptImpl) headlessValue(cfg inputConfig) (string, error) {
	value := cfg.defaultVal
	if cfg.key != "" {
		if v, ok := p.headless.GetDefault(cfg.key); ok {
			value = v
		}
	}
	if value == "" {
		return "", ErrHeadlessNoDefaults
	}
	if cfg.validate != nil {
		if err := cfg.validate(value); err != nil {
			return "", err
		}
	}
	return value, nil
}

func (p *promptImpl) run(field huh.Field) error {
	err := huh.NewForm(huh.NewGroup(field)).
		WithTheme(p.formTheme()).
		WithShowHelp(false).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrCancelled
	}
	return err
}

func (p *promptImpl) formTheme() *huh.Theme {
	if p.theme.NoColor {
		return huh.ThemeBase()
	}
	return huh.ThemeCharm()
}

func buildInputConfig(opts []InputOption) inputConfig {
	var cfg inputConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
