package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/schardosin/docqa/pkg/config"
	"github.com/schardosin/docqa/pkg/session"
	"github.com/schardosin/docqa/pkg/ui"
)

// ChatConfig contains configuration for the interactive chat
type ChatConfig struct {
	API           session.API
	InitialFile   string
	MarkdownStyle string
}

// RunTUI runs the full screen chat until the user quits
func RunTUI(ctx context.Context, cfg *ChatConfig) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The TUI owns the terminal, so logs go to a file
	log.SetOutput(io.Discard)
	if logPath, err := config.GetLogPath(); err == nil && os.MkdirAll(filepath.Dir(logPath), 0755) == nil {
		if f, err := tea.LogToFile(logPath, "docqa"); err == nil {
			defer f.Close()
		}
	}
	defer log.SetOutput(os.Stderr)

	renderer := ui.NewRenderer(ui.ResolveStyle(cfg.MarkdownStyle))

	bridge := ui.NewBridge(ctx)
	ctrl := session.New(cfg.API, bridge, session.WithObserver(bridge.Notify))
	model := ui.NewChatModel(ctx, ctrl, ui.ChatOptions{
		InitialFile: cfg.InitialFile,
		Renderer:    renderer,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	bridge.Attach(p)

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		log.Printf("chat ended with error: %v", err)
		return fmt.Errorf("chat UI failed: %w", err)
	}
	return nil
}
