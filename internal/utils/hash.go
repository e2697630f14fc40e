package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"sync"
)

// hasherPool is a package-level pool of reusable SHA-256 hash instances.
// Avoids repeated allocations in hot hashing paths such as ETag
// computation for the character roster.
var hasherPool = sync.Pool{
	New: func() any {
		return sha256.New()
	},
}

// Hash computes a SHA-256 digest over the given byte slice using a hasher
// pulled from the package-level pool.
//
// Behavior:
//   - Retrieves a hash.Hash instance from sync.Pool
//   - Resets it, writes the data, computes the sum
//   - Resets again and returns it to the pool
func Hash(data []byte) []byte {
	h := hasherPool.Get().(hash.Hash)
	h.Reset()

	h.Write(data)
	sum := h.Sum(nil)

	h.Reset()
	hasherPool.Put(h)

	return sum
}

// HashString computes a SHA-256 digest over the given string and returns it
// hex-encoded.
func HashString(data string) string {
	return hex.EncodeToString(Hash([]byte(data)))
}

// ETag derives a strong entity tag from the serialized payload: a quoted
// hex SHA-256 digest, suitable for the ETag response header and
// If-None-Match comparison.
func ETag(payload []byte) string {
	return `"` + hex.EncodeToString(Hash(payload)) + `"`
}
