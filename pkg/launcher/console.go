package launcher

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/schardosin/docqa/pkg/session"
	"github.com/schardosin/docqa/pkg/ui"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
	ColorGray   = "\033[90m"
)

// ConsoleConfig contains configuration for the line mode chat
type ConsoleConfig struct {
	API           session.API
	InitialFile   string
	MarkdownStyle string
	In            io.Reader
	Out           io.Writer
}

// transcript prints each chat message once
type transcript struct {
	out      io.Writer
	renderer *ui.Renderer
	seen     map[string]bool
	docLabel string
}

func (t *transcript) flush(st session.State) {
	if st.Mode == session.ModeChat && st.DocLabel != t.docLabel {
		fmt.Fprintf(t.out, "\n%s%s%s\n", ColorCyan, st.DocLabel, ColorReset)
	}
	t.docLabel = st.DocLabel
	// the chat log is hidden until a document is loaded
	if st.Mode != session.ModeChat {
		t.docLabel = ""
		return
	}

	for _, msg := range st.Messages {
		if t.seen[msg.ID] || msg.Pending {
			continue
		}
		t.seen[msg.ID] = true
		if msg.Role == session.RoleUser {
			continue
		}
		fmt.Fprintf(t.out, "\n%sAI:%s %s\n", ColorGreen, ColorReset, t.renderer.Render(msg.Text, 100))
	}
}

// readLine returns the next trimmed line. io.EOF is only returned once the
// input is exhausted.
func readLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// RunConsole runs the chat over plain line I/O: a document path first, then
// questions. /reset starts over and /quit leaves.
func RunConsole(ctx context.Context, cfg *ConsoleConfig) error {
	in := bufio.NewReader(cfg.In)
	out := cfg.Out

	ctrl := session.New(cfg.API, &ui.LinePrompter{In: in, Out: out})
	t := &transcript{
		out:      out,
		renderer: ui.NewRenderer(ui.ResolveStyle(cfg.MarkdownStyle)),
		seen:     make(map[string]bool),
	}

	ctrl.CheckStatus(ctx)
	t.flush(ctrl.Snapshot())

	if cfg.InitialFile != "" {
		ctrl.SelectDocument(cfg.InitialFile)
		fmt.Fprintf(out, "%s%s%s\n", ColorGray, session.LoadingText, ColorReset)
		ctrl.UploadDocument(ctx)
		t.flush(ctrl.Snapshot())
	}

	for {
		if ctrl.Snapshot().Mode == session.ModeUpload {
			fmt.Fprintf(out, "\n%sDocument path:%s ", ColorCyan, ColorReset)
		} else {
			fmt.Fprintf(out, "\n%sYou:%s ", ColorYellow, ColorReset)
		}

		line, err := readLine(in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}

		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/reset":
			if ctrl.Snapshot().Mode == session.ModeChat {
				ctrl.Reset(ctx)
				t.flush(ctrl.Snapshot())
				continue
			}
		}

		if ctrl.Snapshot().Mode == session.ModeUpload {
			ctrl.SelectDocument(line)
			st := ctrl.Snapshot()
			fmt.Fprintf(out, "%s%s%s\n", ColorGray, st.FileLabel, ColorReset)
			fmt.Fprintf(out, "%s%s%s\n", ColorGray, session.LoadingText, ColorReset)
			ctrl.UploadDocument(ctx)
			t.flush(ctrl.Snapshot())
			continue
		}

		fmt.Fprintf(out, "%s%s%s\n", ColorGray, session.ThinkingText, ColorReset)
		ctrl.SendMessage(ctx, line)
		t.flush(ctrl.Snapshot())
	}
}
