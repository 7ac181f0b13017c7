package typeid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCarriesPrefix(t *testing.T) {
	id := NewAnnotationID()
	assert.True(t, strings.HasPrefix(id, "anno_"), id)
	require.NoError(t, Validate(id, PrefixAnnotation))
	assert.Error(t, Validate(id, PrefixElement))
}

func TestNewIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewPageID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	assert.Error(t, Validate("not-a-typeid", PrefixPage))
	assert.Error(t, Validate("", PrefixPage))
}
