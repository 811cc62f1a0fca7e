package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"neuralterm/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// DefaultReloadDebounce batches the burst of events editors emit on save.
const DefaultReloadDebounce = 200 * time.Millisecond

// Watcher reloads the config file when it changes on disk and hands the
// freshly loaded config to onReload. The parent directory is watched so
// atomic rename-on-save editors are seen as well.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	path     string
	onReload func(*Config)
	debounce time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool

	reloads int
	errors  int
}

// NewWatcher creates a stopped watcher for path.
func NewWatcher(path string, onReload func(*Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return &Watcher{
		watcher:  fw,
		path:     abs,
		onReload: onReload,
		debounce: DefaultReloadDebounce,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// SetDebounce overrides the reload debounce. Call before Start.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if d > 0 {
		w.debounce = d
	}
}

// Start begins watching. Non-blocking; the loop runs in its own goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	logging.Get(logging.CategoryConfig).Infof("config watcher: watching %s", w.path)

	go w.run(ctx)
	return nil
}

// Stop stops the loop, waits for it and closes the underlying watcher.
// Safe to call multiple times and on a watcher that was never started.
func (w *Watcher) Stop() {
	w.mu.Lock()
	wasRunning := w.running
	w.running = false
	w.mu.Unlock()

	if wasRunning {
		close(w.stopCh)
		<-w.doneCh
	}
	if err := w.watcher.Close(); err != nil {
		logging.Get(logging.CategoryConfig).Errorf("config watcher: close: %v", err)
	}
	if wasRunning {
		reloads, errs := w.Stats()
		logging.Get(logging.CategoryConfig).Infow("config watcher stopped",
			"path", w.path, "reloads", reloads, "errors", errs)
	}
}

// Stats returns how many reloads succeeded and failed.
func (w *Watcher) Stats() (reloads, errors int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads, w.errors
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			// Rapid successive events reset the timer.
			if timer != nil {
				timer.Stop()
			}
			w.mu.Lock()
			d := w.debounce
			w.mu.Unlock()
			timer = time.NewTimer(d)
			fire = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryConfig).Errorf("config watcher error: %v", err)
			w.mu.Lock()
			w.errors++
			w.mu.Unlock()

		case <-fire:
			fire = nil
			w.reload()
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		logging.Get(logging.CategoryConfig).Warnf("config reload failed: %v", err)
		w.mu.Lock()
		w.errors++
		w.mu.Unlock()
		return
	}
	w.mu.Lock()
	w.reloads++
	w.mu.Unlock()
	logging.Get(logging.CategoryConfig).Infof("config reloaded from %s", w.path)
	if w.onReload != nil {
		w.onReload(cfg)
	}
}
