package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/schardosin/docqa/pkg/session"
)

var (
	// --- COLORS ---
	colorPurple = lipgloss.Color("63")
	colorCyan   = lipgloss.Color("86")
	colorPink   = lipgloss.Color("205")
	colorWhite  = lipgloss.Color("252")
	colorGrey   = lipgloss.Color("240")
	colorDark   = lipgloss.Color("236")

	// --- STYLES ---

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(colorPurple).
			Padding(0, 1)

	docLabelStyle = lipgloss.NewStyle().
			Foreground(colorCyan).
			Bold(true).
			PaddingLeft(1)

	userBubbleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(colorPurple).
			Padding(0, 1)

	botBubbleStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Background(colorDark).
			Padding(0, 1)

	pendingStyle = lipgloss.NewStyle().
			Foreground(colorGrey).
			Italic(true).
			Padding(0, 1)

	hintStyle = lipgloss.NewStyle().
			Foreground(colorGrey)

	fileLabelStyle = lipgloss.NewStyle().
			Foreground(colorPink).
			Bold(true)

	modalStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorPurple).
			Padding(1, 2).
			Width(60)

	loadingStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorPink).
			Padding(1, 4)
)

// bubbleWidth is the widest a chat bubble may get in a pane of the given width
func bubbleWidth(paneWidth int) int {
	w := paneWidth * 3 / 4
	if w < 20 {
		w = 20
	}
	return w
}

// RenderBubble draws one chat message. Users sit on the right, the assistant
// on the left. body is the already rendered message text.
func RenderBubble(role session.Role, body string, pending bool, paneWidth int) string {
	maxWidth := bubbleWidth(paneWidth)

	style := botBubbleStyle
	if role == session.RoleUser {
		style = userBubbleStyle
	}
	if pending {
		style = pendingStyle
	}

	// Shrink to the content, but never past maxWidth
	contentWidth := lipgloss.Width(body) + style.GetHorizontalFrameSize()
	if contentWidth > maxWidth {
		contentWidth = maxWidth
	}
	bubble := style.Width(contentWidth).Render(body)

	if role == session.RoleUser {
		return lipgloss.PlaceHorizontal(paneWidth, lipgloss.Right, bubble)
	}
	return lipgloss.PlaceHorizontal(paneWidth, lipgloss.Left, bubble)
}

// RenderModal draws a centered dialog box
func RenderModal(title, body, hint string) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Render(title))
	b.WriteString("\n\n")
	b.WriteString(body)
	if hint != "" {
		b.WriteString("\n\n")
		b.WriteString(hintStyle.Render(hint))
	}
	return modalStyle.Render(b.String())
}
