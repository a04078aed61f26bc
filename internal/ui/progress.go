package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// progressImpl implements the Progress interface.
type progressImpl struct {
	theme    *Theme
	headless *HeadlessManager
	writer   io.Writer
}

// NewProgress creates a Progress writing headless lines to os.Stderr.
func NewProgress(theme *Theme, hm *HeadlessManager) Progress {
	return &progressImpl{theme: theme, headless: hm, writer: os.Stderr}
}

// newProgressImpl creates a progressImpl with a custom writer (for testing).
func newProgressImpl(theme *Theme, hm *HeadlessManager, w io.Writer) *progressImpl {
	return &progressImpl{theme: theme, headless: hm, writer: w}
}

func (p *progressImpl) plain() bool {
	return p.headless.IsHeadless() || p.theme.NoColor
}

// Start creates a determinate progress bar with the given total.
func (p *progressImpl) Start(title string, total int) ProgressBar {
	if p.plain() {
		return &lineProgressBar{title: title, total: total, writer: p.writer}
	}
	return startProgram(newProgressModel(p.theme, title, total))
}

// Spinner creates an indeterminate spinner.
func (p *progressImpl) Spinner(title string) Spinner {
	if p.plain() {
		_, _ = fmt.Fprintln(p.writer, title)
		return &lineSpinner{writer: p.writer}
	}
	return startProgram(newSpinnerModel(p.theme, title))
}

type (
	titleMsg string
	incrMsg  int
	stopMsg  struct{}
)

// programHandle drives a running progress or spinner program.
type programHandle struct {
	program *tea.Program
	once    sync.Once
}

// @MX:WARN: [AUTO] The program goroutine lives until Done or Stop is called.
// @MX:REASON: [AUTO] callers must end every indicator they start
func startProgram(m tea.Model, opts ...tea.ProgramOption) *programHandle {
	h := &programHandle{program: tea.NewProgram(m, append([]tea.ProgramOption{tea.WithOutput(os.Stderr)}, opts...)...)}
	go func() {
		_, _ = h.program.Run()
	}()
	return h
}

func (h *programHandle) Increment(n int)       { h.program.Send(incrMsg(n)) }
func (h *programHandle) SetTitle(title string) { h.program.Send(titleMsg(title)) }

// Done stops the program and waits for it to exit.
func (h *programHandle) Done() {
	h.once.Do(func() {
		h.program.Send(stopMsg{})
		h.program.Wait()
	})
}

// Stop is Done for spinners.
func (h *programHandle) Stop() { h.Done() }

// spinnerModel is the bubbletea Model for the animated spinner.
type spinnerModel struct {
	spinner spinner.Model
	title   string
	done    bool
}

func newSpinnerModel(theme *Theme, title string) spinnerModel {
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	if !theme.NoColor {
		s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Colors.Primary))
	}
	return spinnerModel{spinner: s, title: title}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case titleMsg:
		m.title = string(msg)
	case stopMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + m.title + "\n"
}

// progressModel is the bubbletea Model for the progress bar.
type progressModel struct {
	bar     progress.Model
	title   string
	current int
	total   int
	done    bool
}

func newProgressModel(theme *Theme, title string, total int) progressModel {
	opts := []progress.Option{progress.WithWidth(40)}
	if theme.NoColor {
		opts = append(opts, progress.WithFillCharacters('#', '-'))
	} else {
		opts = append(opts, progress.WithGradient(theme.Colors.Primary, theme.Colors.Secondary))
	}
	return progressModel{bar: progress.New(opts...), title: title, total: total}
}

func (m progressModel) Init() tea.Cmd {
	return nil
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case incrMsg:
		m.current = min(m.current+int(msg), m.total)
	case titleMsg:
		m.title = string(msg)
	case stopMsg:
		m.current = m.total
		m.done = true
		return m, tea.Quit
	case progress.FrameMsg:
		pm, cmd := m.bar.Update(msg)
		m.bar = pm.(progress.Model)
		return m, cmd
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.done {
		return ""
	}
	pct := 0.0
	if m.total > 0 {
		pct = float64(m.current) / float64(m.total)
	}
	return m.bar.ViewAs(pct) + " " + fmt.Sprintf("[%d/%d] %s\n", m.current, m.total, m.title)
}

// lineProgressBar writes one line per update.
type lineProgressBar struct {
	mu      sync.Mutex
	title   string
	total   int
	current int
	writer  io.Writer
}

func (b *lineProgressBar) Increment(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = min(b.current+n, b.total)
	_, _ = fmt.Fprintf(b.writer, "[%d/%d] %s\n", b.current, b.total, b.title)
}

func (b *lineProgressBar) SetTitle(title string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.title = title
}

func (b *lineProgressBar) Done() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == b.total {
		return
	}
	b.current = b.total
	_, _ = fmt.Fprintf(b.writer, "[%d/%d] %s\n", b.current, b.total, b.title)
}

// lineSpinner prints each new title.
type lineSpinner struct {
	writer io.Writer
}

func (s *lineSpinner) SetTitle(title string) {
	_, _ = fmt.Fprintln(s.writer, title)
}

func (s *lineSpinner) Stop() {}
