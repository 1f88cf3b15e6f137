package engine

// watch.go - re-expansion on file changes

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits for further changes before
// re-expanding.
const DefaultDebounce = 100 * time.Millisecond

// WatchOptions configures Watch.
type WatchOptions struct {
	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration
	// OnResult is called after every expansion triggered by a change.
	OnResult func(*ExpandResult, error)
}

// Watch expands all files once, then re-expands the changed input files
// whenever they are written, until ctx is cancelled.
func (e *Engine) Watch(ctx context.Context, opts WatchOptions) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	report := opts.OnResult
	if report == nil {
		report = func(*ExpandResult, error) {}
	}

	report(e.Expand(ctx, ExpandOptions{}))

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := e.watchDir(watcher, e.root); err != nil {
		return err
	}

	e.logger.Info("watching for changes", "root", e.root)
	e.watchLoop(ctx, watcher, opts.Debounce, report)
	return nil
}

// watchDir adds dir and every searchable subdirectory to the watcher.
func (e *Engine) watchDir(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != e.root && e.skipDir(p, d.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}

func (e *Engine) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, debounce time.Duration, report func(*ExpandResult, error)) {
	var (
		mu            sync.Mutex
		pending       = make(map[string]bool)
		debounceTimer *time.Timer
		running       sync.WaitGroup
	)
	defer func() {
		mu.Lock()
		if debounceTimer != nil && debounceTimer.Stop() {
			running.Done()
		}
		mu.Unlock()
		running.Wait()
	}()

	flush := func() {
		defer running.Done()

		mu.Lock()
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}
		clear(pending)
		mu.Unlock()

		if len(paths) == 0 || ctx.Err() != nil {
			return
		}
		e.logger.Info("change detected", "files", len(paths))
		report(e.Expand(ctx, ExpandOptions{Paths: paths}))
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			// Only handle write/create events for relevant files
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := e.watchDir(watcher, event.Name); err != nil {
						e.logger.Warn("failed to watch new directory", "path", event.Name, "error", err.Error())
					}
					continue
				}
			}

			if !e.IsInput(event.Name) || e.excluded(event.Name) {
				continue
			}

			mu.Lock()
			pending[event.Name] = true
			// Debounce re-expansion
			if debounceTimer != nil && debounceTimer.Stop() {
				running.Done()
			}
			running.Add(1)
			debounceTimer = time.AfterFunc(debounce, flush)
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			e.logger.Warn("watcher error", "error", err.Error())
		}
	}
}
