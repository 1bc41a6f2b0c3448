package docqa

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/schardosin/docqa/pkg/config"
	"github.com/schardosin/docqa/pkg/provider"
)

const (
	Version = "1.0.0"
	Name    = "DocQA Document Chat"
	GitHub  = "https://github.com/schardosin/docqa"
)

var asciiLogo = `
    ____              ____    ___
   / __ \____  _____ / __ \  /   |
  / / / / __ \/ ___// / / / / /| |
 / /_/ / /_/ / /__ / /_/ / / ___ |
/_____/\____/\___/ \___\_\/_/  |_|
`

var (
	versionLogoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	versionKeyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true).Width(10)
	versionValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

// versionLines lists what this build talks to: the client backend and the
// model behind `docqa serve`
func versionLines(cfg *config.AppConfig) [][2]string {
	lines := [][2]string{
		{"Version", Version},
		{"GitHub", GitHub},
	}
	if cfg == nil {
		return lines
	}

	if baseURL, err := cfg.BaseURL(""); err == nil {
		lines = append(lines, [2]string{"Backend", baseURL})
	}
	model := cfg.Server.Model
	if model == "" {
		model, _ = provider.ResolveModel(cfg.Server.Provider, "")
	}
	serving := provider.GetProviderDisplayName(cfg.Server.Provider)
	if model != "" {
		serving += " (" + model + ")"
	}
	return append(lines, [2]string{"Serves", serving})
}

func printVersion() {
	// A broken config should not hide the version
	cfg, _ := config.LoadAppConfig()

	var b strings.Builder
	b.WriteString(versionLogoStyle.Render(asciiLogo))
	b.WriteString("\n\n")
	b.WriteString(versionKeyStyle.UnsetWidth().Render(Name))
	b.WriteString("\n")
	for _, line := range versionLines(cfg) {
		b.WriteString(versionKeyStyle.Render(line[0]+":") + " " + versionValueStyle.Render(line[1]) + "\n")
	}
	fmt.Println(b.String())
}
