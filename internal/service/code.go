package service

import (
	"crypto/rand"
	"fmt"
)

// codeAlphabet deliberately excludes lowercase so codes read cleanly over
// the phone; length 8 gives 36^8 ≈ 2.8e12 combinations.
const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 8
)

// generateHumanCode produces a short user-facing reservation code.
// Uniqueness is enforced by the store's unique constraint, not here;
// crypto/rand keeps codes unguessable and collision-resistant under
// concurrent creation.
func generateHumanCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}
