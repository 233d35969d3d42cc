package tables

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events editors emit on save.
const DefaultDebounce = 200 * time.Millisecond

// Watch reloads the store whenever one of its table files changes and calls
// onReload after every reload that swapped in at least one table. It blocks
// until ctx is done. Directories are watched rather than files so that atomic
// saves (write to a temp file, rename over the original) are seen.
func (s *Store) Watch(ctx context.Context, debounce time.Duration, onReload func()) error {
	files := make(map[string]bool)
	for _, p := range []string{s.MassPath, s.AdductPath} {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("failed to resolve path: %w", err)
		}
		files[filepath.Clean(abs)] = true
	}
	if len(files) == 0 {
		return errors.New("no table files to watch")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	dirs := make(map[string]bool)
	for f := range files {
		dir := filepath.Dir(f)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	s.log.Info("Watching tables", "files", len(files))

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !files[filepath.Clean(abs)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			s.log.Debug("Table file changed", "path", event.Name, "op", event.Op.String())
			timer.Reset(debounce)

		case <-timer.C:
			swapped, err := s.reload()
			if swapped == 0 {
				continue
			}
			s.log.Info("Reloaded tables", "elements", s.Masses().Len(), "partial", err != nil)
			if onReload != nil {
				onReload()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("File watcher error", "error", err)
		}
	}
}
