package docstore

import (
	"log/slog"
	"sync"
	"time"
)

// AutoSaver coalesces bursts of state changes into a single write. Each
// Notify (re)schedules the flush at now+window, so a quiet period of one full
// window must elapse before the save runs. Close flushes any pending work.
//
// When disabled it swallows notifications entirely; manual saves bypass it.
type AutoSaver struct {
	mu      sync.Mutex
	timer   *time.Timer
	window  time.Duration
	enabled bool
	closed  bool
	pending bool
	save    func()
}

func NewAutoSaver(window time.Duration, enabled bool, save func()) *AutoSaver {
	return &AutoSaver{
		window:  window,
		enabled: enabled,
		save:    save,
	}
}

// Notify marks the state dirty and restarts the debounce window.
func (a *AutoSaver) Notify() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.enabled || a.closed {
		return
	}
	a.pending = true
	if a.timer == nil {
		a.timer = time.AfterFunc(a.window, a.flush)
		return
	}
	a.timer.Reset(a.window)
}

func (a *AutoSaver) flush() {
	a.mu.Lock()
	if !a.pending {
		a.mu.Unlock()
		return
	}
	a.pending = false
	save := a.save
	a.mu.Unlock()

	save()
}

// Close stops the timer and runs one final save if a change is still
// pending, so shutdown never loses the tail of the debounce window.
func (a *AutoSaver) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	if a.timer != nil {
		a.timer.Stop()
	}
	pending := a.pending
	a.pending = false
	save := a.save
	a.mu.Unlock()

	if pending {
		slog.Debug("flushing pending auto-save on close")
		save()
	}
}
