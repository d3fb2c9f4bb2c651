package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHexRoundTrip(t *testing.T) {
	h := Compute([]byte("macro block"))
	parsed, err := FromHex(h.String())
	require.NoError(t, err)
	assert.Equal(t, h, parsed)
	assert.False(t, h.IsZero())
	assert.True(t, ZeroHash.IsZero())
}

func TestFromHex_Invalid(t *testing.T) {
	_, err := FromHex("zz")
	assert.Error(t, err)

	// valid hex, wrong length
	_, err = FromHex("abcd")
	assert.Error(t, err)
}

func TestText(t *testing.T) {
	h := Compute([]byte{1, 2, 3})
	text, err := h.MarshalText()
	require.NoError(t, err)

	var decoded Hash
	require.NoError(t, decoded.UnmarshalText(text))
	assert.Equal(t, h, decoded)
}
