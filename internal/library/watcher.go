package library

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/weft-dev/weft/internal/logging"
)

// Watch reloads the library whenever the editor rewrites its file. It
// blocks until ctx is cancelled. The directory is watched rather than the
// file because atomic writers replace the inode.
func (l *Library) Watch(ctx context.Context, logger *logging.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(l.path)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	target := filepath.Clean(l.path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := l.Reload(); err != nil {
				// Keep serving the previous snapshot on a bad write.
				logger.Warn("library reload failed", "path", l.path, "error", err)
				continue
			}
			logger.Info("library reloaded", "path", l.path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("library watch error", "error", err)
		}
	}
}
