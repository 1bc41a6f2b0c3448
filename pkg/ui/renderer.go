package ui

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Renderer turns assistant answers into terminal markdown using glamour.
// One glamour renderer is kept per wrap width.
type Renderer struct {
	style string

	mu        sync.Mutex
	renderers map[int]*glamour.TermRenderer
}

// NewRenderer creates a Renderer. style is a glamour standard style such as
// "dark", "light" or "notty"; empty or "auto" picks one for the terminal.
func NewRenderer(style string) *Renderer {
	return &Renderer{style: style, renderers: make(map[int]*glamour.TermRenderer)}
}

// ResolveStyle replaces "auto" with a concrete style. It queries the terminal,
// so call it before a bubbletea program takes over stdin.
func ResolveStyle(style string) string {
	if style != "" && style != "auto" {
		return style
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return "notty"
	}
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}

func (r *Renderer) termRenderer(width int) (*glamour.TermRenderer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tr, ok := r.renderers[width]; ok {
		return tr, nil
	}

	styleOpt := glamour.WithAutoStyle()
	if r.style != "" && r.style != "auto" {
		styleOpt = glamour.WithStandardStyle(r.style)
	}
	tr, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return nil, err
	}
	r.renderers[width] = tr
	return tr, nil
}

// Render detects content type and renders it wrapped at width. Raw JSON is
// wrapped in a code block for highlighting. On any glamour failure the input
// is returned unchanged.
func (r *Renderer) Render(input string, width int) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	if (strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}")) ||
		(strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]")) {
		if isJSON(trimmed) {
			trimmed = fmt.Sprintf("```json\n%s\n```", trimmed)
		}
	}

	if width < 10 {
		width = 10
	}
	tr, err := r.termRenderer(width)
	if err != nil {
		return input
	}
	out, err := tr.Render(trimmed)
	if err != nil {
		return input
	}

	// Glamour pads the block with blank lines
	return strings.Trim(out, "\n")
}

func isJSON(s string) bool {
	var js json.RawMessage
	return json.Unmarshal([]byte(s), &js) == nil
}
