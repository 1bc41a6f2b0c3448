package docqa

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/schardosin/docqa/pkg/client"
	"github.com/schardosin/docqa/pkg/session"
	"github.com/schardosin/docqa/pkg/ui"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// reportBackendError prints a styled explanation and returns a short error for main
func reportBackendError(c *client.Client, action string, err error) error {
	fmt.Print(ui.RenderBackendError(c.BaseURL(), err, client.IsAPIError(err)))
	return fmt.Errorf("%s failed", action)
}

func handleStatusCommand(args []string) error {
	statusCmd := flag.NewFlagSet("status", flag.ExitOnError)
	apiURL := addAPIURLFlag(statusCmd)
	if err := statusCmd.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	c, _, err := newBackendClient(*apiURL)
	if err != nil {
		return err
	}
	ctx, stop := interruptContext()
	defer stop()

	if err := c.Health(ctx); err != nil {
		return reportBackendError(c, "health check", err)
	}
	st, err := c.Status(ctx)
	if err != nil {
		return reportBackendError(c, "status check", err)
	}

	fmt.Printf("%s %s\n", mutedStyle.Render("Backend:"), c.BaseURL())
	if !st.HasDocument {
		fmt.Println("No document loaded. Upload one with 'docqa upload FILE'.")
		return nil
	}
	fmt.Println(session.DocumentLabel(st.Filename, st.Chunks))
	return nil
}

// deferredAlerts holds alerts raised while a spinner owns the terminal
type deferredAlerts struct {
	messages []string
}

func (p *deferredAlerts) Alert(message string) {
	p.messages = append(p.messages, message)
}

func (p *deferredAlerts) Confirm(string) bool { return false }

func handleUploadCommand(args []string) error {
	uploadCmd := flag.NewFlagSet("upload", flag.ExitOnError)
	apiURL := addAPIURLFlag(uploadCmd)
	uploadCmd.Usage = func() {
		fmt.Println("usage: docqa upload [-h] [--api-url URL] FILE")
		fmt.Println("")
		fmt.Println("Upload a PDF, TXT, MD or HTML document and make it the active document")
	}
	if err := uploadCmd.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	if uploadCmd.NArg() != 1 {
		uploadCmd.Usage()
		return fmt.Errorf("upload requires exactly one file")
	}

	c, _, err := newBackendClient(*apiURL)
	if err != nil {
		return err
	}
	ctx, stop := interruptContext()
	defer stop()

	alerts := &deferredAlerts{}
	ctrl := session.New(c, alerts)
	ctrl.SelectDocument(uploadCmd.Arg(0))

	err = ui.RunWithSpinner(session.LoadingText, func() error {
		return ctrl.UploadDocument(ctx)
	})
	for _, msg := range alerts.messages {
		fmt.Print(ui.RenderErrorBox("Upload Failed", msg, "", ""))
	}
	if err != nil {
		if len(alerts.messages) > 0 {
			return fmt.Errorf("upload failed")
		}
		return err
	}

	st := ctrl.Snapshot()
	fmt.Println(successStyle.Render("✓ " + st.Messages[len(st.Messages)-1].Text))
	fmt.Println(st.DocLabel)
	return nil
}

func handleAskCommand(args []string) error {
	askCmd := flag.NewFlagSet("ask", flag.ExitOnError)
	apiURL := addAPIURLFlag(askCmd)
	raw := askCmd.Bool("raw", false, "Print the answer without markdown rendering")
	askCmd.Usage = func() {
		fmt.Println("usage: docqa ask [-h] [--raw] [--api-url URL] QUESTION...")
		fmt.Println("")
		fmt.Println("Ask one question about the active document")
	}
	if err := askCmd.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	question := strings.TrimSpace(strings.Join(askCmd.Args(), " "))
	if question == "" {
		askCmd.Usage()
		return fmt.Errorf("no question provided")
	}

	c, cfg, err := newBackendClient(*apiURL)
	if err != nil {
		return err
	}
	ctx, stop := interruptContext()
	defer stop()

	var result *client.ChatResult
	err = ui.RunWithSpinner(session.ThinkingText, func() error {
		var err error
		result, err = c.Chat(ctx, question)
		return err
	})
	if errors.Is(err, ui.ErrInterrupted) {
		return err
	}
	if err != nil {
		return reportBackendError(c, "question", err)
	}

	if *raw {
		fmt.Println(result.Response)
		return nil
	}
	renderer := ui.NewRenderer(ui.ResolveStyle(cfg.General.MarkdownStyle))
	fmt.Println(renderer.Render(result.Response, 100))
	if result.Source != "" {
		fmt.Println(mutedStyle.Render("Source: " + result.Source))
	}
	return nil
}

func handleResetCommand(args []string) error {
	resetCmd := flag.NewFlagSet("reset", flag.ExitOnError)
	apiURL := addAPIURLFlag(resetCmd)
	yes := resetCmd.Bool("y", false, "Do not ask for confirmation")
	if err := resetCmd.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	c, _, err := newBackendClient(*apiURL)
	if err != nil {
		return err
	}
	ctx, stop := interruptContext()
	defer stop()

	var prompter session.Prompter = ui.FormPrompter{Out: os.Stdout}
	if *yes {
		prompter = ui.AutoConfirm{Out: os.Stdout}
	}

	if !prompter.Confirm(session.ResetQuestion) {
		fmt.Println("Reset cancelled.")
		return nil
	}
	if err := c.Reset(ctx); err != nil {
		return reportBackendError(c, "reset", err)
	}
	fmt.Println(successStyle.Render("✓ Knowledge base reset successfully"))
	return nil
}
