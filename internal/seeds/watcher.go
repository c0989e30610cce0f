package seeds

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/formbind/internal/storage"
)

const reconcileDelay = 200 * time.Millisecond

// Watch follows the seed directory with fsnotify until ctx is cancelled and
// keeps c in sync, calling cb after every change.
//
// Renames delete the old seed immediately and schedule a debounced Sync,
// which picks up the new name.
func Watch(ctx context.Context, c *Catalog, store storage.Provider, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := store.Root()
	if err := w.Add(root); err != nil {
		return err
	}
	logger.Info("seeds: watching", slog.String("root", root))

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time
	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
			return
		}
		reconcileTimer.Reset(reconcileDelay)
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("seeds: watcher stopped")
			return nil

		case <-reconcileCh:
			if err := Sync(c, store, logger, cb); err != nil {
				logger.Warn("seeds: reconcile failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !storage.IsSeedFile(ev.Name) {
				continue
			}
			rel, err := filepath.Rel(root, ev.Name)
			if err != nil {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				loadFile(c, store, rel, logger, cb)

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				if s, ok := c.remove(NameOf(rel)); ok {
					logger.Debug("seeds: deleted", slog.String("seed", s.Name))
					if cb != nil {
						cb(KindDeleted, s)
					}
				}
				if ev.Op&fsnotify.Rename != 0 {
					scheduleReconcile()
				}
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("seeds: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

func modTime(store storage.Provider, path string) time.Time {
	info, err := os.Stat(filepath.Join(store.Root(), path))
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
