package resource

import (
	"log"
	"path/filepath"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-editor/common"
	"github.com/fsnotify/fsnotify"
)

// watcher tracks asset files and collects the keys whose files changed.
// Directories are watched instead of files so editors that save by rename are still seen.
type watcher struct {
	mu      sync.Mutex
	fs      *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
	dirs    map[string]bool
	byPath  map[string][]string
	changed map[string]bool
}

func newWatcher() (*watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &watcher{
		fs:      fw,
		done:    make(chan struct{}),
		dirs:    make(map[string]bool),
		byPath:  make(map[string][]string),
		changed: make(map[string]bool),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

func (w *watcher) add(key, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return common.LookupError("resource.Watch", path)
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.dirs[dir] {
		if err := w.fs.Add(dir); err != nil {
			return err
		}
		w.dirs[dir] = true
	}
	if !slices.Contains(w.byPath[abs], key) {
		w.byPath[abs] = append(w.byPath[abs], key)
	}
	return nil
}

func (w *watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.mark(filepath.Clean(event.Name))
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Printf("[Resources] file watcher error: %v", err)
		}
	}
}

func (w *watcher) mark(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, key := range w.byPath[path] {
		w.changed[key] = true
	}
}

// drain returns the changed keys in sorted order and forgets them.
// The path registrations stay so reloaded resources keep being watched.
func (w *watcher) drain() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	keys := make([]string, 0, len(w.changed))
	for k := range w.changed {
		keys = append(keys, k)
	}
	clear(w.changed)
	slices.Sort(keys)
	return keys
}

func (w *watcher) close() {
	close(w.done)
	w.wg.Wait()
	if err := w.fs.Close(); err != nil {
		log.Printf("[Resources] failed to close file watcher: %v", err)
	}
}
