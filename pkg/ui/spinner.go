package ui

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

func newSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorPink)
	return s
}

type SpinnerModel struct {
	spinner     spinner.Model
	text        string
	err         error
	quitting    bool
	interrupted bool
}

type taskDoneMsg struct{ err error }

func NewSpinner(text string) SpinnerModel {
	return SpinnerModel{spinner: newSpinner(), text: text}
}

func (m SpinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m SpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			m.interrupted = true
			return m, tea.Quit
		}
	case taskDoneMsg:
		m.err = msg.err
		m.quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m SpinnerModel) View() string {
	if m.quitting {
		return ""
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), m.text)
}

// ErrInterrupted is returned when the user stops a spinner with ctrl+c
var ErrInterrupted = errors.New("interrupted")

// RunWithSpinner shows a spinner labelled text while fn runs. Without a
// terminal fn runs bare.
func RunWithSpinner(text string, fn func() error) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fn()
	}

	p := tea.NewProgram(NewSpinner(text))
	go func() {
		p.Send(taskDoneMsg{err: fn()})
	}()

	final, err := p.Run()
	if err != nil {
		return err
	}
	m := final.(SpinnerModel)
	if m.interrupted {
		return ErrInterrupted
	}
	return m.err
}
