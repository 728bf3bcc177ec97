package session

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCSRF() *CSRF {
	return NewCSRF(base64.RawURLEncoding.EncodeToString([]byte(strings.Repeat("k", 32))))
}

func TestCSRF_RoundTrip(t *testing.T) {
	c := testCSRF()
	tok, err := c.Generate("sess-1")
	require.NoError(t, err)
	assert.True(t, c.Verify("sess-1", tok))
}

func TestCSRF_BoundToSession(t *testing.T) {
	c := testCSRF()
	tok, err := c.Generate("sess-1")
	require.NoError(t, err)
	assert.False(t, c.Verify("sess-2", tok))
}

func TestCSRF_RejectsGarbageAndForeignKeys(t *testing.T) {
	c := testCSRF()
	assert.False(t, c.Verify("s", ""))
	assert.False(t, c.Verify("s", "!!not-base64!!"))

	other := NewCSRF("")
	tok, err := other.Generate("s")
	require.NoError(t, err)
	assert.False(t, c.Verify("s", tok))
}
