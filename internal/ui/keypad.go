package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hycracing/courseselect/internal/catalog"
	"github.com/hycracing/courseselect/internal/keypad"
)

// keypadLayout is the on-screen grid, top row first.
var keypadLayout = [4][3]keypad.Key{
	{keypad.Key1, keypad.Key2, keypad.Key3},
	{keypad.Key4, keypad.Key5, keypad.Key6},
	{keypad.Key7, keypad.Key8, keypad.Key9},
	{keypad.KeyClear, keypad.Key0, keypad.KeyEnter},
}

type keypadKeyMap struct {
	Digits key.Binding
	Clear  key.Binding
	Enter  key.Binding
	Quit   key.Binding
}

func newKeypadKeyMap() keypadKeyMap {
	return keypadKeyMap{
		Digits: key.NewBinding(key.WithKeys("0", "1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("0-9", "digit")),
		Clear:  key.NewBinding(key.WithKeys("c", "backspace", "esc"), key.WithHelp("c/⌫", "clear")),
		Enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "activate")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keypadKeyMap) bindings() []key.Binding {
	return []key.Binding{k.Digits, k.Clear, k.Enter, k.Quit}
}

// submitDoneMsg carries the outcome of an enter press.
type submitDoneMsg struct {
	result keypad.Result
	err    error
}

// KeypadModel is the bubbletea model of the course keypad. Digit and clear
// presses apply immediately; enter runs the activation in a tea.Cmd and
// ignores further keys until it reports back.
type KeypadModel struct {
	ctx     context.Context
	machine *keypad.Machine
	theme   *Theme
	keys    keypadKeyMap
	help    help.Model

	view      keypad.View
	busy      bool
	status    string
	statusErr bool
	active    *catalog.Course
	quitting  bool
}

// NewKeypadModel returns a model driving machine.
func NewKeypadModel(ctx context.Context, machine *keypad.Machine, theme *Theme) KeypadModel {
	return KeypadModel{
		ctx:     ctx,
		machine: machine,
		theme:   theme,
		keys:    newKeypadKeyMap(),
		help:    help.New(),
		view:    machine.View(),
	}
}

// Init implements tea.Model.
func (m KeypadModel) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m KeypadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case submitDoneMsg:
		m.busy = false
		m.view = m.machine.View()
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		course := msg.result.Course
		m.active = &course
		m.status, m.statusErr = fmt.Sprintf("Course %s active (%.2f nm)", course.Number, course.LengthNM), false
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		k, ok := keyFromMsg(msg)
		if !ok {
			return m, nil
		}
		if !m.view.IsActive(k) {
			m.status, m.statusErr = fmt.Sprintf("%s is not available", keyLabel(k)), false
			return m, nil
		}
		if k == keypad.KeyEnter {
			m.busy = true
			m.status, m.statusErr = fmt.Sprintf("Activating course %s...", m.view.Entry), false
			return m, m.submit()
		}
		if _, err := m.machine.Press(m.ctx, k); err != nil {
			m.setError(err)
		} else {
			m.status = ""
		}
		m.view = m.machine.View()
		return m, nil
	}
	return m, nil
}

func (m KeypadModel) submit() tea.Cmd {
	ctx, machine := m.ctx, m.machine
	return func() tea.Msg {
		res, err := machine.Press(ctx, keypad.KeyEnter)
		return submitDoneMsg{result: res, err: err}
	}
}

func (m *KeypadModel) setError(err error) {
	m.statusErr = true
	switch {
	case errors.Is(err, keypad.ErrCourseNotFound):
		m.status = "Course not found"
	default:
		m.status = err.Error()
	}
}

// View implements tea.Model.
func (m KeypadModel) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.theme.Title().Render("Course keypad"))
	b.WriteString("\n\n")
	b.WriteString(m.grid())
	b.WriteString("\n\n")
	b.WriteString(m.entryLine())
	b.WriteString("\n")
	if m.view.Found {
		b.WriteString(FormatMarks(m.theme, m.view.Preview))
		b.WriteString(m.theme.Muted().Render(fmt.Sprintf("  %.2f nm", m.view.LengthNM)))
		b.WriteString("\n")
	}
	if m.status != "" {
		style := m.theme.Muted()
		if m.statusErr {
			style = m.theme.Error()
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(m.keys.bindings()))
	b.WriteString("\n")
	return b.String()
}

func (m KeypadModel) grid() string {
	rows := make([]string, 0, len(keypadLayout))
	for _, row := range keypadLayout {
		cells := make([]string, 0, len(row))
		for _, k := range row {
			cells = append(cells, m.cell(k))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m KeypadModel) cell(k keypad.Key) string {
	style := lipgloss.NewStyle().
		Width(5).
		Align(lipgloss.Center).
		Border(lipgloss.NormalBorder())
	label := keyLabel(k)
	switch {
	case m.view.IsActive(k):
		if !m.theme.NoColor {
			style = style.BorderForeground(lipgloss.Color(m.theme.Colors.Primary)).Bold(true)
		}
	case m.theme.NoColor:
		label = "."
	default:
		style = style.Faint(true).Foreground(lipgloss.Color(m.theme.Colors.Muted))
	}
	return style.Render(label)
}

func (m KeypadModel) entryLine() string {
	entry := m.view.Entry + strings.Repeat("_", 3-len(m.view.Entry))
	line := "Course: " + entry
	if m.active != nil {
		line += m.theme.Muted().Render("   active: " + m.active.Number)
	}
	return line
}

// Entry returns the digits on display.
func (m KeypadModel) Entry() string { return m.view.Entry }

// Status returns the status line text.
func (m KeypadModel) Status() string { return m.status }

// Busy reports whether an activation is in flight.
func (m KeypadModel) Busy() bool { return m.busy }

// RunKeypad runs the keypad program until the user quits or ctx ends.
func RunKeypad(ctx context.Context, machine *keypad.Machine, theme *Theme, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(NewKeypadModel(ctx, machine, theme), opts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// RunHeadlessKeypad reads one key per line from r and reports each step to
// w. It returns at end of input, on "q", or when ctx ends.
func RunHeadlessKeypad(ctx context.Context, machine *keypad.Machine, theme *Theme, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "q" || line == "quit" {
			return nil
		}
		k, ok := keypad.ParseKey(line)
		if !ok {
			_, _ = fmt.Fprintf(w, "unknown key %q\n", line)
			continue
		}
		res, err := machine.Press(ctx, k)
		switch {
		case err != nil:
			_, _ = fmt.Fprintf(w, "error: %v\n", err)
		case !res.Accepted:
			_, _ = fmt.Fprintf(w, "%s is not available\n", keyLabel(k))
		case res.Submitted:
			_, _ = fmt.Fprintf(w, "course %s active: %s\n", res.Course.Number, FormatMarks(theme, res.Course.Marks()))
		default:
			v := machine.View()
			_, _ = fmt.Fprintf(w, "entry %q keys %s\n", v.Entry, joinKeys(v.Active))
		}
	}
	return scanner.Err()
}

// FormatMarks renders marks in order, starboard roundings green and
// underlined. Without colour the course-table tokens are shown.
func FormatMarks(theme *Theme, marks []catalog.Waypoint) string {
	parts := make([]string, len(marks))
	for i, wp := range marks {
		switch {
		case theme.NoColor:
			parts[i] = wp.Token()
		case wp.Starboard():
			parts[i] = theme.Starboard().Render(wp.Mark)
		default:
			parts[i] = wp.Mark
		}
	}
	return strings.Join(parts, " ")
}

func keyFromMsg(msg tea.KeyMsg) (keypad.Key, bool) {
	switch msg.Type {
	case tea.KeyEnter:
		return keypad.KeyEnter, true
	case tea.KeyBackspace, tea.KeyEsc:
		return keypad.KeyClear, true
	case tea.KeyRunes:
		if len(msg.Runes) != 1 {
			return "", false
		}
		return keypad.ParseKey(string(msg.Runes))
	}
	return "", false
}

func keyLabel(k keypad.Key) string {
	switch k {
	case keypad.KeyClear:
		return "C"
	case keypad.KeyEnter:
		return "OK"
	}
	return string(k)
}

func joinKeys(keys []keypad.Key) string {
	labels := make([]string, len(keys))
	for i, k := range keys {
		labels[i] = keyLabel(k)
	}
	return strings.Join(labels, " ")
}
