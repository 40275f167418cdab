package media

import (
	"context"
	"fmt"

	"musicbox/logger"

	"github.com/fsnotify/fsnotify"
)

// Watch logs filesystem activity in the media directory until ctx is done.
// Uploads and deletes normally flow through the Store; anything else touching
// the directory (manual cleanup, crashed uploads leaving orphans) shows up
// here so drift between catalog rows and files is visible in the logs.
func Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create media watcher: %w", err)
	}

	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch media directory %s: %w", dir, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				switch {
				case event.Op&fsnotify.Create != 0:
					logger.Debug("Media file created", logger.String("file", event.Name))
				case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
					logger.Warn("Media file removed or renamed", logger.String("file", event.Name))
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error("Media watcher error", logger.ErrorField(err))
			}
		}
	}()

	return nil
}
