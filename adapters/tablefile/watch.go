package tablefile

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"irs-mortality/core/engine"
	"irs-mortality/internal/logging"
)

// DebounceInterval is how long Watch waits after the last file event
// before reloading, so a multi-file update loads once.
var DebounceInterval = 500 * time.Millisecond

// Watch monitors the data directory tree and calls onChange with freshly
// loaded tables after files change. It runs until ctx is cancelled.
//
// If a reload fails (e.g. a half-written CSV), the error is logged and
// onChange is not called; callers keep serving the previous tables.
func Watch(ctx context.Context, dir string, layout Layout, precision int32, onChange func(*engine.Tables)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := addTree(watcher, dir); err != nil {
		return err
	}

	log := logging.With(zap.String("dir", dir)).Named("tablefile")
	log.Info("watching data directory")

	var timer *time.Timer
	var reload <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
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
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			// New subdirectories need their own watch.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = addTree(watcher, event.Name)
				}
			}
			log.Debug("data file changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))

			if timer == nil {
				timer = time.NewTimer(DebounceInterval)
			} else {
				timer.Reset(DebounceInterval)
			}
			reload = timer.C

		case <-reload:
			reload = nil
			tables, err := Load(dir, layout, precision)
			if err != nil {
				log.Warn("reload failed, keeping previous tables", zap.Error(err))
				continue
			}
			log.Info("data reloaded", zap.Stringer("fingerprint", tables.Fingerprint()))
			onChange(tables)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("watcher error", zap.Error(err))
		}
	}
}

// addTree watches root and every directory below it
func addTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
