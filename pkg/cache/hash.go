package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// DefaultKeyer hashes the argument vector together with the input digest.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// PipeKey returns "pipe:<sha256>". Arguments are hashed as a list so that
// {"-Tpng", "x"} and {"-Tpngx"} never collide.
func (DefaultKeyer) PipeKey(argv []string, input []byte) string {
	return hashKey("pipe", argv, Hash(input))
}

// VersionKey returns "version:<binary>".
func (DefaultKeyer) VersionKey(binary string) string {
	return "version:" + binary
}
