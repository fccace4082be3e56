package ui

// spinner.go runs a blocking spinner while a command loads data.

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrCancelled is returned when the user interrupts a spinner before its action finishes
var ErrCancelled = errors.New("cancelled")

// slowAfter is when the spinner starts showing elapsed time
const slowAfter = 2 * time.Second

type loadDoneMsg struct {
	err error
}

type loadSpinner struct {
	spinner   spinner.Model
	title     string
	action    func() error
	started   time.Time
	elapsed   time.Duration
	finished  bool
	cancelled bool
	err       error
}

// RunWithSpinner runs action while a spinner with title is shown and returns
// the action's error. Ctrl+C stops waiting and returns ErrCancelled; the action
// itself keeps running, so callers pass it a cancellable context.
//
//	err := RunWithSpinner("Loading issues...", func() error {
//	    return ctrl.Load(ctx, start)
//	}, tea.WithOutput(os.Stderr))
func RunWithSpinner(title string, action func() error, opts ...tea.ProgramOption) error {
	m := loadSpinner{
		spinner: NewAppSpinner(),
		title:   title,
		action:  action,
		started: time.Now(),
	}

	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return fmt.Errorf("failed to run spinner: %w", err)
	}

	result := final.(loadSpinner)
	if result.cancelled || !result.finished {
		return ErrCancelled
	}
	return result.err
}

func (m loadSpinner) Init() tea.Cmd {
	action := m.action
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return loadDoneMsg{err: action()}
	})
}

func (m loadSpinner) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadDoneMsg:
		m.finished = true
		m.err = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		m.elapsed = time.Since(m.started)
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loadSpinner) View() string {
	if m.finished || m.cancelled {
		return ""
	}
	line := m.spinner.View() + " " + RenderNormal(m.title)
	if m.elapsed >= slowAfter {
		line += HintStyle.Render(fmt.Sprintf(" (%ds)", int(m.elapsed.Seconds())))
	}
	return line
}
