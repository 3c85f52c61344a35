package document

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports when the source file changes on disk so the UI can
// offer a reload. Events are debounced: editors often emit several writes
// for one save.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	changed  chan struct{}
	done     chan struct{}
	debounce time.Duration
}

// Watch starts watching path for writes. Close the watcher to release it.
func Watch(path string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors that replace the file via rename drop
	// the watch on the file itself.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close() //nolint:errcheck
		return nil, err
	}
	w := &Watcher{
		watcher:  fw,
		path:     filepath.Clean(path),
		changed:  make(chan struct{}, 1),
		done:     make(chan struct{}),
		debounce: 250 * time.Millisecond,
	}
	go w.loop()
	return w, nil
}

// Changed receives one signal per (debounced) on-disk change.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changed
}

// Close stops watching.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

func (w *Watcher) loop() {
	var timer *time.Timer
	var timerC <-chan time.Time
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case <-timerC:
			timer = nil
			timerC = nil
			select {
			case w.changed <- struct{}{}:
			default:
			}
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}
