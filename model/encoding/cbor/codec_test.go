package cbor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finalitylabs/qcert/model/encoding"
)

type payload struct {
	Round  uint32
	Digest [4]byte
	Labels map[string]uint16
}

func TestEncode_Deterministic(t *testing.T) {
	enc := NewEncoder()
	val := payload{
		Round:  7,
		Digest: [4]byte{1, 2, 3, 4},
		Labels: map[string]uint16{"zeta": 1, "alpha": 2, "mid": 3, "b": 4},
	}

	first, err := enc.Encode(val)
	require.NoError(t, err)
	// map iteration order is randomised by the runtime, the encoding must not be
	for i := 0; i < 50; i++ {
		again, err := enc.Encode(val)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}

	var decoded payload
	require.NoError(t, enc.Decode(first, &decoded))
	assert.Equal(t, val, decoded)
}

func TestDecode_Truncated(t *testing.T) {
	enc := NewEncoder()
	b := enc.MustEncode(payload{Round: 1, Labels: map[string]uint16{"a": 1}})

	for cut := 0; cut < len(b); cut++ {
		var decoded payload
		err := enc.Decode(b[:cut], &decoded)
		require.Error(t, err, "cut at %d", cut)
		assert.True(t, errors.Is(err, encoding.ErrUnexpectedEnd), "cut at %d: %v", cut, err)
		assert.True(t, encoding.IsDecodeError(err))
	}
}

func TestDecode_Malformed(t *testing.T) {
	enc := NewEncoder()

	t.Run("wrong type", func(t *testing.T) {
		b := enc.MustEncode("not a struct")
		var decoded payload
		err := enc.Decode(b, &decoded)
		require.Error(t, err)
		assert.True(t, errors.Is(err, encoding.ErrBadEncoding))
	})

	t.Run("unknown field", func(t *testing.T) {
		b := enc.MustEncode(map[string]uint32{"Round": 1, "Extra": 2})
		var decoded payload
		err := enc.Decode(b, &decoded)
		require.Error(t, err)
		assert.True(t, errors.Is(err, encoding.ErrBadEncoding))
	})

	t.Run("trailing bytes", func(t *testing.T) {
		b := append(enc.MustEncode(payload{Round: 3}), 0x00)
		var decoded payload
		err := enc.Decode(b, &decoded)
		require.Error(t, err)
		assert.True(t, errors.Is(err, encoding.ErrBadEncoding))
	})

	t.Run("must decode panics", func(t *testing.T) {
		assert.Panics(t, func() {
			var decoded payload
			enc.MustDecode([]byte{0xff}, &decoded)
		})
	})
}
