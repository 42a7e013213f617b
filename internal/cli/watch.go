package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce collapses the burst of events an editor emits on save.
const watchDebounce = 200 * time.Millisecond

// watchFile calls fn after every change to path until ctx is done. The
// parent directory is watched, since editors often save by replacing the
// file. Errors from fn are logged and watching continues.
func watchFile(ctx context.Context, path string, fn func() error) error {
	logger := loggerFromContext(ctx)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	logger.Info("watching for changes", "path", path)

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			logger.Debug("file changed", "path", ev.Name, "op", ev.Op.String())
			fire = time.After(watchDebounce)
		case <-fire:
			fire = nil
			printInfo("%s changed", path)
			if err := fn(); err != nil {
				logger.Error("re-render failed", "err", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "err", err)
		}
	}
}
