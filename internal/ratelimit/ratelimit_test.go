package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowWithinBurst(t *testing.T) {
	krl := New(1, 3)

	assert.True(t, krl.Allow("user-a"))
	assert.True(t, krl.Allow("user-a"))
	assert.True(t, krl.Allow("user-a"))
	assert.False(t, krl.Allow("user-a"), "burst exhausted")
}

func TestKeysAreIndependent(t *testing.T) {
	krl := New(1, 1)

	assert.True(t, krl.Allow("user-a"))
	assert.False(t, krl.Allow("user-a"))

	// A different key gets its own bucket.
	assert.True(t, krl.Allow("user-b"))
}

func TestPerMinute(t *testing.T) {
	krl := PerMinute(60, 2)

	assert.True(t, krl.Allow("ip-1"))
	assert.True(t, krl.Allow("ip-1"))
	assert.False(t, krl.Allow("ip-1"))
}
