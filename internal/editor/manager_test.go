package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerPutGet(t *testing.T) {
	m := NewManager()
	s := NewSession("1-a", "a.pdf", 0)

	m.Put(s, nil)
	got, ok := m.Get("1-a")
	require.True(t, ok)
	assert.Same(t, s, got)

	_, ok = m.Get("2-b")
	assert.False(t, ok)
}

func TestManagerCloseRunsCloser(t *testing.T) {
	m := NewManager()
	var flushed bool
	m.Put(NewSession("1-a", "a.pdf", 0), func() { flushed = true })

	m.Close("1-a")
	assert.True(t, flushed)

	_, ok := m.Get("1-a")
	assert.False(t, ok)

	// Closing again is harmless.
	m.Close("1-a")
}

func TestManagerDiscardSkipsCloser(t *testing.T) {
	m := NewManager()
	var flushed bool
	m.Put(NewSession("1-a", "a.pdf", 0), func() { flushed = true })

	m.Discard("1-a")
	assert.False(t, flushed, "discard must not trigger a trailing save")

	_, ok := m.Get("1-a")
	assert.False(t, ok)
}

func TestManagerCloseAll(t *testing.T) {
	m := NewManager()
	closed := 0
	m.Put(NewSession("1-a", "a.pdf", 0), func() { closed++ })
	m.Put(NewSession("2-b", "b.pdf", 0), func() { closed++ })

	m.CloseAll()
	assert.Equal(t, 2, closed)

	_, ok := m.Get("1-a")
	assert.False(t, ok)
}
