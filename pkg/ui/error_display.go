package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	colorRed    = lipgloss.Color("196")
	colorYellow = lipgloss.Color("226")

	headerStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	indentStyle = lipgloss.NewStyle().
			PaddingLeft(3)

	reasonTextStyle = lipgloss.NewStyle().
			Foreground(colorWhite)

	suggestionTitleStyle = lipgloss.NewStyle().
				Foreground(colorYellow).
				Bold(true)

	suggestionTextStyle = lipgloss.NewStyle().
				Foreground(colorYellow)

	rawErrorTitleStyle = lipgloss.NewStyle().
				Foreground(colorGrey).
				Bold(true)

	rawErrorTextStyle = lipgloss.NewStyle().
				Foreground(colorGrey)
)

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// RenderErrorBox renders an indented error report wrapped to the terminal width
func RenderErrorBox(title, reason, suggestion, originalError string) string {
	// Terminal width minus indent and a safety margin
	contentWidth := terminalWidth() - 5

	header := indentStyle.Render(headerStyle.Render(fmt.Sprintf("✕ %s", title)))

	var bodyBlocks []string
	addSpacer := func() {
		if len(bodyBlocks) > 0 {
			bodyBlocks = append(bodyBlocks, "")
		}
	}

	if reason != "" {
		bodyBlocks = append(bodyBlocks, reasonTextStyle.Width(contentWidth).Render(reason))
	}

	if suggestion != "" {
		addSpacer()
		bodyBlocks = append(bodyBlocks,
			suggestionTitleStyle.Render("Suggestion:"),
			suggestionTextStyle.Width(contentWidth).Render(suggestion),
		)
	}

	if originalError != "" {
		addSpacer()
		bodyBlocks = append(bodyBlocks,
			rawErrorTitleStyle.Render("Raw Error:"),
			rawErrorTextStyle.Width(contentWidth).Render(strings.TrimSpace(originalError)),
		)
	}

	body := indentStyle.Render(lipgloss.JoinVertical(lipgloss.Left, bodyBlocks...))
	return fmt.Sprintf("\n%s\n%s\n", header, body)
}

// RenderBackendError explains a failed backend call. Transport failures get
// a hint about where the client is pointed.
func RenderBackendError(baseURL string, err error, apiError bool) string {
	if apiError {
		return RenderErrorBox("Request Failed", err.Error(), "", "")
	}
	return RenderErrorBox(
		"Backend Unreachable",
		fmt.Sprintf("Could not reach the document QA backend at %s.", baseURL),
		"Start it with 'docqa serve', or point the client elsewhere with --api-url or DOCQA_API_URL.",
		err.Error(),
	)
}
