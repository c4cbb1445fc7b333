package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// RequestDone signals the model that the in-flight request has resolved.
type RequestDone struct {
	Err error
}

// RequestModel renders a spinner while one request is in flight and a
// final status line once it resolves.
type RequestModel struct {
	spinner spinner.Model
	label   string
	done    bool
	err     error
	aborted bool
}

// NewRequestModel creates a model for a single in-flight request.
func NewRequestModel(label string) RequestModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return RequestModel{spinner: sp, label: label}
}

func (m RequestModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m RequestModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.aborted = true
			return m, tea.Quit
		}

	case RequestDone:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m RequestModel) View() string {
	if m.aborted {
		return errStyle.Render("✗") + " " + labelStyle.Render(m.label+" canceled") + "\n"
	}
	if m.done {
		if m.err != nil {
			return errStyle.Render("✗") + " " + labelStyle.Render(fmt.Sprintf("%s: %v", m.label, m.err)) + "\n"
		}
		return okStyle.Render("✓") + " " + labelStyle.Render(m.label) + "\n"
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), labelStyle.Render(m.label+"..."))
}

// Aborted reports whether the user quit before the request resolved.
func (m RequestModel) Aborted() bool {
	return m.aborted
}

// Run shows a spinner for label while fn runs, then renders its result.
// fn's error is returned unchanged.
func Run(label string, fn func() error) error {
	program := tea.NewProgram(NewRequestModel(label))

	result := make(chan error, 1)
	go func() {
		err := fn()
		result <- err
		program.Send(RequestDone{Err: err})
	}()

	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("failed to run status display: %w", err)
	}
	if model, ok := final.(RequestModel); ok && model.Aborted() {
		return fmt.Errorf("canceled")
	}

	return <-result
}
