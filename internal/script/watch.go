package script

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce window for editors that write files in bursts.
const reloadDebounce = 100 * time.Millisecond

// Watch reloads the library whenever a script file in dir changes. It runs
// until ctx is cancelled. A failed reload keeps the previous specs.
func (l *Library) Watch(ctx context.Context, dir string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return err
	}

	go func() {
		defer w.Close()
		last := make(map[string]time.Time)

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				if !isScriptFile(event.Name) {
					continue
				}
				now := time.Now()
				if t, seen := last[event.Name]; seen && now.Sub(t) < reloadDebounce {
					continue
				}
				last[event.Name] = now

				if err := l.LoadDir(dir); err != nil {
					if l.logger != nil {
						l.logger.Error("Script reload failed, keeping previous library: %v", err)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				if l.logger != nil {
					l.logger.Error("Script watcher error: %v", err)
				}
			}
		}
	}()

	return nil
}
