package codegen

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"

	"github.com/dclass/dclassql/inspect"
)

// Rebuild produces a fresh *inspect.Graph from the record types a watched
// model source file declares. Watch calls it after every write or create
// event and re-runs Generate against whatever it returns.
type Rebuild func() (*inspect.Graph, error)

// Watch re-runs Generate whenever a file under any of paths changes, until
// ctx is cancelled. It is meant for local development only — the teacher's
// own generator has no equivalent, so this follows the single-watcher loop
// fsnotify's own examples use. Events are not debounced: every write or
// create event triggers its own rebuild and Generate run.
func Watch(ctx context.Context, paths []string, cfg Config, rebuild Rebuild) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("codegen: starting watcher: %w", err)
	}
	defer watcher.Close()

	for _, p := range paths {
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("codegen: watching %s: %w", p, err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if cfg.Logger != nil {
				cfg.Logger.Error("codegen: watcher error", "error", err)
			}
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			g, err := rebuild()
			if err != nil {
				if cfg.Logger != nil {
					cfg.Logger.Error("codegen: rebuild failed", "error", err)
				}
				continue
			}
			if err := Generate(ctx, g, cfg); err != nil {
				if cfg.Logger != nil {
					cfg.Logger.Error("codegen: generate failed", "error", err)
				}
			}
		}
	}
}
