package launcher

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/schardosin/docqa/pkg/session"
	"github.com/schardosin/docqa/pkg/ui"
	"github.com/schardosin/docqa/pkg/watcher"
)

// WatchConfig contains configuration for watch mode
type WatchConfig struct {
	API      session.API
	Path     string
	Debounce time.Duration
	Out      io.Writer
}

// RunWatch uploads the document, then uploads it again every time it changes,
// until ctx ends
func RunWatch(ctx context.Context, cfg *WatchConfig) error {
	w, err := watcher.New(cfg.Path, cfg.Debounce)
	if err != nil {
		return err
	}
	defer w.Stop()

	ctrl := session.New(cfg.API, ui.AutoConfirm{Out: cfg.Out})

	upload := func() {
		ctrl.SelectDocument(w.Path())
		if err := ctrl.UploadDocument(ctx); err != nil {
			return
		}
		fmt.Fprintf(cfg.Out, "%s[%s]%s uploaded %s\n",
			ColorGray, time.Now().Format("15:04:05"), ColorReset, ctrl.Snapshot().DocLabel)
	}

	changes, err := w.Watch(ctx)
	if err != nil {
		return err
	}

	upload()
	fmt.Fprintf(cfg.Out, "Watching %s for changes. Press Ctrl+C to stop.\n", w.Path())

	for range changes {
		upload()
	}
	return nil
}
