package utils // package utils provides helper functions for token generation

import (
	"crypto/rand"  // secure random number generation
	"encoding/hex" // hex encoding
)

// NewSessionID returns an opaque 64-character hex session identifier
// generated from 32 bytes of cryptographically secure random data.
// The ID carries no embedded claims; everything about the session
// lives server-side in the session store, so logging out truly
// invalidates it.
func NewSessionID() (string, error) {
	return RandomHex(32)
}

// RandomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data. It is used for session IDs
// and for collision-resistant upload filenames.
func RandomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
