package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/wethinkt/go-daybook/internal/tuilog"
)

// watchDebounce collapses the burst of events editors emit on save.
const watchDebounce = 250 * time.Millisecond

// Watch reloads the config file whenever it changes on disk and passes the
// result to onChange. It blocks until ctx is cancelled.
//
// The directory is watched rather than the file so that editors which
// replace the file by renaming keep working.
func Watch(ctx context.Context, onChange func(Config)) error {
	configPath, err := Path()
	if err != nil {
		return err
	}
	dir := filepath.Dir(configPath)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}
	tuilog.Log.Info("Watching config", "path", configPath)

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	reload := func() {
		cfg, err := Load()
		if err != nil {
			tuilog.Log.Warn("Config reload failed", "error", err)
			return
		}
		if ctx.Err() != nil {
			return
		}
		tuilog.Log.Info("Config reloaded", "path", configPath)
		onChange(cfg)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(configPath) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, reload)
			mu.Unlock()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			tuilog.Log.Error("Config watcher error", "error", err)
		}
	}
}
