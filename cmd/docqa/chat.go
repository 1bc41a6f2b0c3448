package docqa

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/schardosin/docqa/pkg/client"
	"github.com/schardosin/docqa/pkg/config"
	"github.com/schardosin/docqa/pkg/launcher"
	"golang.org/x/term"
)

// addAPIURLFlag registers the backend override every client command shares
func addAPIURLFlag(fs *flag.FlagSet) *string {
	return fs.String("api-url", "", "Backend base URL (overrides DOCQA_API_URL and the configured environment)")
}

// newBackendClient loads the config and builds a client for the selected backend
func newBackendClient(apiURL string) (*client.Client, *config.AppConfig, error) {
	cfg, err := config.LoadAppConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	baseURL, err := cfg.BaseURL(apiURL)
	if err != nil {
		return nil, nil, err
	}
	return client.New(baseURL), cfg, nil
}

func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func handleChatCommand(args []string) error {
	chatCmd := flag.NewFlagSet("chat", flag.ExitOnError)
	plain := chatCmd.Bool("plain", false, "Use line mode instead of the full screen UI")
	file := chatCmd.String("file", "", "Upload this document at startup")
	apiURL := addAPIURLFlag(chatCmd)
	chatCmd.Usage = printChatUsage

	if err := chatCmd.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	if *file == "" && chatCmd.NArg() > 0 {
		*file = chatCmd.Arg(0)
	}

	c, cfg, err := newBackendClient(*apiURL)
	if err != nil {
		return err
	}

	ctx, stop := interruptContext()
	defer stop()

	if *plain || !term.IsTerminal(int(os.Stdin.Fd())) {
		return launcher.RunConsole(ctx, &launcher.ConsoleConfig{
			API:           c,
			InitialFile:   *file,
			MarkdownStyle: cfg.General.MarkdownStyle,
			In:            os.Stdin,
			Out:           os.Stdout,
		})
	}

	return launcher.RunTUI(ctx, &launcher.ChatConfig{
		API:           c,
		InitialFile:   *file,
		MarkdownStyle: cfg.General.MarkdownStyle,
	})
}

func printChatUsage() {
	fmt.Println("usage: docqa chat [-h] [--plain] [--file FILE] [--api-url URL] [FILE]")
	fmt.Println("")
	fmt.Println("Chat with a document. Without a document loaded in the backend the chat")
	fmt.Println("starts with a file picker.")
	fmt.Println("")
	fmt.Println("options:")
	fmt.Println("  -h, --help            show this help message and exit")
	fmt.Println("  --plain               Use line mode instead of the full screen UI")
	fmt.Println("  --file FILE           Upload this document at startup")
	fmt.Println("  --api-url URL         Backend base URL")
}
