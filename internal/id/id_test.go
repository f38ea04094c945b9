package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	id, err := Generate("post")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(id, "post-"))
	// prefix + separator + 21-character nanoid
	assert.Len(t, id, len("post-")+21)
}

func TestGenerateUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for range 1000 {
		id, err := Generate("vote")
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate ID generated: %s", id)
		seen[id] = true
	}
}

func TestMustGenerate(t *testing.T) {
	assert.NotPanics(t, func() {
		id := MustGenerate("reply")
		assert.True(t, strings.HasPrefix(id, "reply-"))
	})
}
