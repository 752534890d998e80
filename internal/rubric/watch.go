package rubric

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events editors emit on save.
const DefaultDebounce = 200 * time.Millisecond

// Watch calls onChange with the path of every rubric document that is
// created, written or renamed in dir, until ctx is cancelled. A path is
// reported once it has been quiet for the debounce window, so a save that
// truncates and then writes is seen with its final content. onChange runs on
// the watching goroutine.
func Watch(ctx context.Context, dir string, debounce time.Duration, logger *slog.Logger, onChange func(path string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	settled := make(chan string)
	stopped := make(chan struct{})
	pending := make(map[string]*time.Timer)
	defer func() {
		close(stopped)
		for _, t := range pending {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !IsRubricFile(event.Name) {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			if t, ok := pending[event.Name]; ok {
				t.Reset(debounce)
				continue
			}
			path := event.Name
			pending[path] = time.AfterFunc(debounce, func() {
				select {
				case settled <- path:
				case <-stopped:
				}
			})
		case path := <-settled:
			delete(pending, path)
			onChange(path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("rubric watcher error", "dir", dir, "error", err)
		}
	}
}
