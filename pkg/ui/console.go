package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
)

// FormPrompter asks questions with huh forms and prints alerts as error boxes.
// It owns the terminal while a question is open.
type FormPrompter struct {
	Out io.Writer
}

func (p FormPrompter) Alert(message string) {
	fmt.Fprint(p.Out, RenderErrorBox("Error", message, "", ""))
}

func (p FormPrompter) Confirm(question string) bool {
	confirmed := false
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(question).
				Affirmative("Yes").
				Negative("No").
				Value(&confirmed),
		),
	)
	if err := form.Run(); err != nil {
		return false
	}
	return confirmed
}

// AutoConfirm answers every question with yes. Used for --yes flags.
type AutoConfirm struct {
	Out io.Writer
}

func (p AutoConfirm) Alert(message string) {
	fmt.Fprint(p.Out, RenderErrorBox("Error", message, "", ""))
}

func (AutoConfirm) Confirm(string) bool { return true }

// LinePrompter asks y/N questions over plain line I/O. Console mode shares
// its reader so answers and chat input come from the same stream.
type LinePrompter struct {
	In  *bufio.Reader
	Out io.Writer
}

func (p *LinePrompter) Alert(message string) {
	fmt.Fprint(p.Out, RenderErrorBox("Error", message, "", ""))
}

func (p *LinePrompter) Confirm(question string) bool {
	fmt.Fprintf(p.Out, "%s [y/N]: ", question)
	answer, err := p.In.ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
