package render

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerBeginSupersedesInFlight(t *testing.T) {
	tr := NewTracker()

	first, cancelFirst := tr.Begin(context.Background())
	defer cancelFirst()
	require.NoError(t, first.Err())

	second, cancelSecond := tr.Begin(context.Background())
	defer cancelSecond()

	assert.ErrorIs(t, first.Err(), context.Canceled, "starting a render cancels the previous one")
	assert.NoError(t, second.Err())
}

func TestTrackerStopCancelsOutstanding(t *testing.T) {
	tr := NewTracker()

	ctx, cancel := tr.Begin(context.Background())
	defer cancel()

	tr.Stop()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)

	// Stop with nothing in flight is fine.
	tr.Stop()
}

func TestTrackerBeginInheritsParent(t *testing.T) {
	tr := NewTracker()

	parent, cancelParent := context.WithCancel(context.Background())
	ctx, cancel := tr.Begin(parent)
	defer cancel()

	cancelParent()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestCanceled(t *testing.T) {
	assert.True(t, Canceled(context.Canceled))
	assert.True(t, Canceled(fmt.Errorf("render page: %w", context.Canceled)))
	assert.False(t, Canceled(errors.New("disk on fire")))
	assert.False(t, Canceled(nil))
}
