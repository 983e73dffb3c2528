package auth

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueTokenFormat(t *testing.T) {
	issuer := NewTokenIssuer()

	token, err := issuer.Issue()
	require.NoError(t, err)

	assert.Len(t, token, tokenLength*2, "token is hex, two characters per byte")
	decoded, err := hex.DecodeString(token)
	require.NoError(t, err)
	assert.Len(t, decoded, tokenLength)
}

func TestIssueTokenUniqueness(t *testing.T) {
	issuer := NewTokenIssuer()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := issuer.Issue()
		require.NoError(t, err)
		assert.False(t, seen[token], "tokens must never repeat")
		seen[token] = true
	}
}
