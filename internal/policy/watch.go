package policy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"governance-backend/internal/extract"
	"governance-backend/internal/shared/telemetry"
)

// Invalidator is anything holding a cache that must be dropped on change.
type Invalidator interface {
	Invalidate()
}

// Watcher invalidates a policy cache when documents in a local directory change.
type Watcher struct {
	watcher *fsnotify.Watcher
	target  Invalidator
}

// NewWatcher creates the directory if needed and starts watching it.
func NewWatcher(dir string, target Invalidator) (*Watcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("policy dir: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, err
	}
	return &Watcher{watcher: w, target: target}, nil
}

// Run blocks until ctx is done, invalidating on create, write, remove and rename.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			w.target.Invalidate()
			telemetry.Info("policy.invalidated", map[string]any{
				"file": filepath.Base(event.Name),
				"op":   event.Op.String(),
			})
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			telemetry.Error("policy.watch_error", map[string]any{"error": err.Error()})
		}
	}
}

func relevant(event fsnotify.Event) bool {
	if !extract.Supported(event.Name) {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
