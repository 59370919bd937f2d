// Package checksum computes the content digests used for change detection
// and optimistic concurrency.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Matches reports whether expected is the digest of data. expected may be
// a quoted ETag value; an empty expected always matches.
func Matches(data []byte, expected string) bool {
	expected = strings.Trim(strings.TrimPrefix(expected, "W/"), `"`)
	return expected == "" || expected == Sum(data)
}
