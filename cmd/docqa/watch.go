package docqa

import (
	"flag"
	"fmt"
	"os"

	"github.com/schardosin/docqa/pkg/launcher"
	"github.com/schardosin/docqa/pkg/watcher"
)

func handleWatchCommand(args []string) error {
	watchCmd := flag.NewFlagSet("watch", flag.ExitOnError)
	apiURL := addAPIURLFlag(watchCmd)
	debounce := watchCmd.Duration("debounce", watcher.DefaultDebounce, "Quiet period before a change is uploaded")
	watchCmd.Usage = printWatchUsage

	if err := watchCmd.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	if watchCmd.NArg() != 1 {
		printWatchUsage()
		return fmt.Errorf("watch requires exactly one file")
	}

	c, _, err := newBackendClient(*apiURL)
	if err != nil {
		return err
	}
	ctx, stop := interruptContext()
	defer stop()

	return launcher.RunWatch(ctx, &launcher.WatchConfig{
		API:      c,
		Path:     watchCmd.Arg(0),
		Debounce: *debounce,
		Out:      os.Stdout,
	})
}

func printWatchUsage() {
	fmt.Println("usage: docqa watch [-h] [--debounce DURATION] [--api-url URL] FILE")
	fmt.Println("")
	fmt.Println("Upload FILE, then upload it again every time it changes on disk")
	fmt.Println("")
	fmt.Println("options:")
	fmt.Println("  -h, --help            show this help message and exit")
	fmt.Println("  --debounce DURATION   Quiet period before a change is uploaded (default: 500ms)")
	fmt.Println("  --api-url URL         Backend base URL")
}
