package scene

import (
	"os"
	"sync"
	"time"
)

// Watcher polls a set of files and invokes a callback when any of them is
// modified. The viewer uses it to reload a scene while it is being edited.
type Watcher struct {
	paths         []string
	checkInterval time.Duration

	mu       sync.Mutex
	baseline map[string]time.Time
	stopCh   chan struct{}
	onChange func(path string) // Called from the watcher goroutine
}

// NewWatcher creates a watcher for paths. Files that do not exist yet are
// reported once they appear.
func NewWatcher(checkInterval time.Duration, paths ...string) *Watcher {
	w := &Watcher{
		paths:         paths,
		checkInterval: checkInterval,
		baseline:      make(map[string]time.Time, len(paths)),
	}
	w.ResetBaseline()
	return w
}

// OnChange sets the callback to invoke when a watched file changes.
// The callback is called from a background goroutine - use appropriate
// synchronization if updating UI.
func (w *Watcher) OnChange(callback func(path string)) {
	w.mu.Lock()
	w.onChange = callback
	w.mu.Unlock()
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start() {
	w.mu.Lock()
	w.stopCh = make(chan struct{})
	stop := w.stopCh
	w.mu.Unlock()
	go w.watchLoop(stop)
}

// Stop stops the watcher goroutine.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopCh != nil {
		close(w.stopCh)
		w.stopCh = nil
	}
}

func (w *Watcher) watchLoop(stop chan struct{}) {
	ticker := time.NewTicker(w.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			w.Poll()
		}
	}
}

// Poll checks every file once and reports the ones modified since the last
// baseline. It returns the changed paths.
func (w *Watcher) Poll() []string {
	var changed []string
	w.mu.Lock()
	for _, p := range w.paths {
		mod := modTime(p)
		if mod.After(w.baseline[p]) {
			w.baseline[p] = mod
			changed = append(changed, p)
		}
	}
	cb := w.onChange
	w.mu.Unlock()

	if cb != nil {
		for _, p := range changed {
			cb(p)
		}
	}
	return changed
}

// ResetBaseline records the current modification times as unchanged.
func (w *Watcher) ResetBaseline() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, p := range w.paths {
		w.baseline[p] = modTime(p)
	}
}

// Paths returns the watched files.
func (w *Watcher) Paths() []string {
	return w.paths
}

func modTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
