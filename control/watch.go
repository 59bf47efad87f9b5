// control/watch.go
// Author: momentics <momentics@gmail.com>
//
// Configuration file watching for hot reload.

package control

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the file at path on every write or replace and pushes its
// tunables into store. It blocks until ctx is done. A file that fails to load
// is logged and the previous values stay in effect.
//
// The parent directory is watched so that editors that replace the file
// by rename keep being observed.
func Watch(ctx context.Context, path string, store *ConfigStore, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			cfg, err := LoadFile(abs)
			if err != nil {
				log.Warn("config reload rejected", "path", path, "err", err)
				continue
			}
			tun := cfg.Tunables()
			store.SetConfig(tun)
			log.Info("config reloaded", "path", path, "keys", len(tun))
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("config watcher error", "path", path, "err", err)
		}
	}
}
