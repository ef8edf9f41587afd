package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// hashKey derives a namespaced cache key from its parts: "prefix:" followed
// by the SHA-256 of the JSON-encoded parts. The full digest is kept so
// distinct renders never collide.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return prefix + ":" + hex.EncodeToString(sum[:])
}

// Hash returns the SHA-256 of data as a 64-character hex string. Used to
// content-address monster records and source documents.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
