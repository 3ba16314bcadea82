package index

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for a burst of file events
// to settle before reporting a change.
const DefaultDebounce = 200 * time.Millisecond

// ChangeCallback is called once per settled burst of events on the watched
// file.
type ChangeCallback func()

// Watch starts an fsnotify watcher on dir and calls onChange whenever the
// file named name inside it is created, written, renamed or removed, until
// ctx is cancelled.
//
// The directory is watched rather than the file itself: atomic writes
// replace the file by renaming a temporary file over it, which would drop a
// watch held on the old inode. Events are debounced so a backup-then-write
// sequence is reported once.
func Watch(ctx context.Context, dir, name string, debounce time.Duration, logger *slog.Logger, onChange ChangeCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	logger.Info("watcher: started", slog.String("dir", dir), slog.String("file", name))

	var timer *time.Timer
	var fire <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(debounce)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			logger.Debug("watcher: change settled", slog.String("file", name))
			if onChange != nil {
				onChange()
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			logger.Debug("watcher: event", slog.String("file", name), slog.String("op", ev.Op.String()))
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
