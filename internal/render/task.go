package render

import (
	"context"
	"errors"
	"sync"
)

// Tracker enforces the one-outstanding-render rule for a viewer: beginning a
// new render cancels whatever render is still in flight, and teardown
// cancels the last one. A render aborted this way ends with context.Canceled,
// which callers treat as expected, not as a failure.
type Tracker struct {
	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Begin cancels the in-flight render, if any, and returns the context for
// the new one. The returned cancel func releases the task's resources and is
// safe to call after completion.
func (t *Tracker) Begin(ctx context.Context) (context.Context, context.CancelFunc) {
	taskCtx, cancel := context.WithCancel(ctx)

	t.mu.Lock()
	prev := t.cancel
	t.cancel = cancel
	t.mu.Unlock()

	if prev != nil {
		prev()
	}
	return taskCtx, cancel
}

// Stop cancels the outstanding render. Called when the viewer goes away.
func (t *Tracker) Stop() {
	t.mu.Lock()
	cancel := t.cancel
	t.cancel = nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Canceled reports whether a render error is a cancellation rather than a
// real failure.
func Canceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
