package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// hashKey builds a namespaced cache key from an artifact kind and the
// inputs that determine the artifact: "pagegraph:<kind>:<sha256>".
// Every input that changes the cached bytes must be part of parts, or
// two different artifacts will share a key.
func hashKey(kind string, parts ...interface{}) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return "pagegraph:" + kind + ":" + hex.EncodeToString(sum[:])
}

// Hash returns the hex SHA-256 of data. Callers hash the raw recording
// bytes with it to key decoded graphs and rendered diagrams.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
