package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// tokenLength is the number of random bytes per session token
// (32 bytes = 256 bits).
const tokenLength = 32

// TokenIssuer mints opaque session tokens.
type TokenIssuer struct{}

func NewTokenIssuer() *TokenIssuer {
	return &TokenIssuer{}
}

// Issue returns a fresh bearer token: tokenLength bytes from the system
// CSPRNG, hex-encoded. Tokens carry no embedded structure and are never
// derived from counters or non-cryptographic generators.
func (t *TokenIssuer) Issue() (string, error) {
	buf := make([]byte, tokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
