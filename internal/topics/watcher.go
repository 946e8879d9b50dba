package topics

import (
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a topics file and reloads the selector's catalog on change.
// Changes are debounced (300ms) to avoid rapid reloads while editors write.
type Watcher struct {
	path     string
	selector *Selector
	watcher  *fsnotify.Watcher
	debounce time.Duration
	stopChan chan struct{}
	mu       sync.Mutex
	running  bool
}

// NewWatcher creates a topics file watcher bound to a selector.
func NewWatcher(path string, selector *Selector) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		path:     path,
		selector: selector,
		watcher:  w,
		debounce: 300 * time.Millisecond,
	}, nil
}

// Start begins watching the topics file.
func (tw *Watcher) Start() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.running {
		return nil
	}
	if err := tw.watcher.Add(tw.path); err != nil {
		return err
	}
	tw.stopChan = make(chan struct{})
	tw.running = true
	go tw.watchLoop(tw.stopChan)
	slog.Info("topics watcher started", "path", tw.path)
	return nil
}

// Stop halts the file watcher.
func (tw *Watcher) Stop() {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if !tw.running {
		return
	}
	close(tw.stopChan)
	tw.running = false
	tw.watcher.Close()
	slog.Info("topics watcher stopped")
}

func (tw *Watcher) watchLoop(stop chan struct{}) {
	var debounceTimer *time.Timer

	for {
		select {
		case <-stop:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-tw.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(tw.debounce, tw.reload)

		case err, ok := <-tw.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("topics watcher error", "error", err)
		}
	}
}

func (tw *Watcher) reload() {
	if err := tw.selector.Load(tw.path); err != nil {
		slog.Warn("topics reload failed, keeping previous catalog", "path", tw.path, "error", err)
		return
	}
	slog.Info("topics catalog reloaded", "path", tw.path, "topics", tw.selector.Size())
}
