package docqa

import (
	"flag"
	"fmt"

	"github.com/schardosin/docqa/pkg/config"
	"github.com/schardosin/docqa/pkg/launcher"
)

func handleServeCommand(args []string) error {
	serveCmd := flag.NewFlagSet("serve", flag.ExitOnError)
	port := serveCmd.Int("port", 0, "Port to run the backend on (default: server.port, 5000)")
	serveCmd.Usage = printServeUsage

	if err := serveCmd.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	cfg, err := config.LoadAppConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := interruptContext()
	defer stop()

	return launcher.RunServe(ctx, &launcher.ServeConfig{AppConfig: cfg, Port: *port})
}

func printServeUsage() {
	fmt.Println("usage: docqa serve [-h] [--port PORT]")
	fmt.Println("")
	fmt.Println("Run the document QA backend (upload, chat, reset, status)")
	fmt.Println("")
	fmt.Println("options:")
	fmt.Println("  -h, --help            show this help message and exit")
	fmt.Println("  --port PORT           Port to run the backend on (default: 5000)")
}
