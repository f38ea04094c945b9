package store

import "sync"

// Key prefixes for board records.
const (
	postPrefix    = "post:"    // post:{postID} → Post JSON
	votePrefix    = "vote:"    // vote:{postID}:{userID} → Vote JSON
	replyPrefix   = "reply:"   // reply:{postID}:{replyID} → Reply JSON
	profilePrefix = "profile:" // profile:{userID} → Profile JSON
)

// keyPool provides reusable byte slices for building database keys.
// This reduces allocations on the hot path of vote transactions.
var keyPool = sync.Pool{
	New: func() any {
		// 128 bytes covers prefix + two nanoid components.
		return make([]byte, 0, 128)
	},
}

// buildKey constructs a database key from a prefix and path parts,
// joining parts with ':'. The returned slice is valid until releaseKey
// is called; callers MUST call releaseKey when done.
//
// Usage:
//
//	key := buildKey(votePrefix, postID, userID)
//	defer releaseKey(key)
//	item, err := txn.Get(key)
func buildKey(prefix string, parts ...string) []byte {
	buf, _ := keyPool.Get().([]byte)
	buf = buf[:0] // Reset length, keep capacity
	buf = append(buf, prefix...)
	for i, p := range parts {
		if i > 0 {
			buf = append(buf, ':')
		}
		buf = append(buf, p...)
	}
	return buf
}

// releaseKey returns a key buffer to the pool for reuse.
// After calling this, the key slice must not be used.
func releaseKey(key []byte) {
	// Avoid keeping oversized buffers in the pool.
	if cap(key) <= 512 {
		keyPool.Put(key[:0])
	}
}
