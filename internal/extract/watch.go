package extract

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 500 * time.Millisecond

// Watch runs the job once and again after every batch of changes to matching
// files in Dir, until ctx is cancelled. Only the top-level directory is watched.
func (j Job) Watch(ctx context.Context, debounce time.Duration, onPass func(Summary, error)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	ext := j.Ext
	if ext == "" {
		ext = DefaultExt
	}
	log := j.logger()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir, err := filepath.Abs(j.Dir)
	if err != nil {
		return err
	}
	if err := watcher.Add(dir); err != nil {
		return err
	}
	out := j.Output
	if out == "" {
		out = DefaultOutput
	}
	absOut, _ := filepath.Abs(out)

	pass := func() {
		sum, err := j.Run()
		if onPass != nil {
			onPass(sum, err)
		}
	}
	pass()

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(ev.Name, ext) {
				continue
			}
			if p, _ := filepath.Abs(ev.Name); p == absOut {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			log.Debug("config file changed", "file", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			pass()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				pass()
				continue
			}
			log.Warn("watcher error", "err", err)
		}
	}
}
