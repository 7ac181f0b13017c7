package pdfops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRanges(t *testing.T) {
	tests := []struct {
		name      string
		ranges    []PageRange
		pageCount int
		wantErr   bool
	}{
		{"single full range", []PageRange{{1, 10}}, 10, false},
		{"multiple ranges", []PageRange{{1, 3}, {4, 10}}, 10, false},
		{"single page", []PageRange{{5, 5}}, 10, false},
		{"overlap is allowed", []PageRange{{1, 5}, {3, 8}}, 10, false},
		{"empty", nil, 10, true},
		{"start below one", []PageRange{{0, 3}}, 10, true},
		{"end before start", []PageRange{{5, 2}}, 10, true},
		{"end past document", []PageRange{{1, 11}}, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRanges(tt.ranges, tt.pageCount)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRange)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStubProtect(t *testing.T) {
	ctx := context.Background()
	b := NewStubBuilder()

	out, err := b.Protect(ctx, []byte("%PDF-1.7"), "hunter2")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7"), out)

	_, err = b.Protect(ctx, []byte("%PDF-1.7"), "")
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestStubMerge(t *testing.T) {
	ctx := context.Background()
	b := NewStubBuilder()

	_, err := b.Merge(ctx, nil)
	assert.ErrorIs(t, err, ErrNoDocuments)

	out, err := b.Merge(ctx, [][]byte{[]byte("a"), []byte("b")})
	require.NoError(t, err)
	assert.NotNil(t, out)
}

func TestStubSplitProducesOneDocPerRange(t *testing.T) {
	b := NewStubBuilder()

	parts, err := b.Split(context.Background(), []byte("%PDF-1.7"), []PageRange{{1, 2}, {3, 4}, {5, 5}})
	require.NoError(t, err)
	assert.Len(t, parts, 3)
}

func TestStubOutputIsACopy(t *testing.T) {
	src := []byte("%PDF-1.7")
	out, err := NewStubBuilder().Assemble(context.Background(), src)
	require.NoError(t, err)

	out[0] = 'X'
	assert.Equal(t, byte('%'), src[0], "builder output must not alias the source")
}
