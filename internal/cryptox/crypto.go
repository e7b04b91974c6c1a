// Package cryptox provides content digests used to detect corrupted or
// tampered archive entries.
package cryptox

import (
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Checksum returns the hex-encoded blake2b-256 digest of b.
func Checksum(b []byte) string {
	sum := blake2b.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// VerifyChecksum reports whether want is the checksum of b. Hex case is
// ignored.
func VerifyChecksum(b []byte, want string) bool {
	got := Checksum(b)
	want = strings.ToLower(want)
	return len(got) == len(want) && subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
