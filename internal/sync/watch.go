package sync

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sqlshelf/sqlshelf/internal/storage"
)

const debounceWindow = 250 * time.Millisecond

// Watch re-runs the sync whenever a local source directory changes.
// Events are debounced so a burst of editor writes triggers one sync.
// Blocks until ctx is canceled. Git sources are not watched; they only
// move on an explicit sync.
func Watch(ctx context.Context, db *storage.DB, opts Options) error {
	sources, err := db.GetAllSources()
	if err != nil {
		return fmt.Errorf("failed to get sources: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	watched := 0
	for _, source := range sources {
		if source.Type != "local" {
			continue
		}
		if err := addRecursive(watcher, source.Path); err != nil {
			slog.Warn("Cannot watch source", "path", source.Path, "error", err)
			continue
		}
		watched++
	}
	if watched == 0 {
		return fmt.Errorf("no watchable local sources")
	}
	slog.Info("Watching local sources for changes", "sources", watched)

	var timer *time.Timer
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			// New directories need to join the watch set.
			if event.Has(fsnotify.Create) {
				if err := addRecursive(watcher, event.Name); err == nil {
					slog.Debug("Watching new path", "path", event.Name)
				}
			}
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
			} else {
				timer.Reset(debounceWindow)
			}
			pending = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", "error", err)
		case <-pending:
			pending = nil
			if err := Run(ctx, db, opts); err != nil {
				slog.Error("Sync after change failed", "error", err)
			}
		}
	}
}

// addRecursive registers path and every directory below it. Passing a
// file registers nothing and returns nil; fsnotify watches its parent.
func addRecursive(watcher *fsnotify.Watcher, path string) error {
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && p != path {
			return filepath.SkipDir
		}
		return watcher.Add(p)
	})
}

// relevant filters out events that cannot change the corpus.
func relevant(event fsnotify.Event) bool {
	if event.Has(fsnotify.Chmod) {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	// Directory events matter for the watch set; file events only for
	// markdown.
	return strings.HasSuffix(strings.ToLower(base), ".md") || filepath.Ext(base) == ""
}
