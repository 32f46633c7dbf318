package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestSealAmount(t *testing.T) {
	c, err := NewCipher(testKey)
	require.NoError(t, err)
	require.True(t, c.Configured())

	sealed, err := c.SealAmount(8500.5)
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "8500")

	amount, err := c.OpenAmount(sealed)
	require.NoError(t, err)
	assert.Equal(t, 8500.5, amount)
}

func TestPassthroughWithoutKey(t *testing.T) {
	c, err := NewCipher("")
	require.NoError(t, err)
	assert.False(t, c.Configured())

	sealed, err := c.SealAmount(1200)
	require.NoError(t, err)
	assert.Equal(t, "1200.00", string(sealed))

	amount, err := c.OpenAmount(sealed)
	require.NoError(t, err)
	assert.Equal(t, 1200.0, amount)
}

func TestRejectsShortKey(t *testing.T) {
	_, err := NewCipher(strings.Repeat("a", 10))
	assert.Error(t, err)
}

func TestOpenTooShort(t *testing.T) {
	c, err := NewCipher(testKey)
	require.NoError(t, err)
	_, err = c.Open([]byte{1, 2})
	assert.ErrorIs(t, err, ErrCiphertextTooShort)
}
