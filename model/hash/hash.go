package hash

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Len is the size of a block hash in bytes.
const Len = blake2b.Size256

// Hash is the Blake2b-256 digest identifying a block. It is the value validators vote
// on in both PBFT phases.
type Hash [Len]byte

// ZeroHash is the lowest value in the 32-byte hash space.
var ZeroHash = Hash{}

// Compute returns the Blake2b-256 digest of the given bytes.
func Compute(data []byte) Hash {
	return blake2b.Sum256(data)
}

// FromHex parses a hex encoded hash.
func FromHex(s string) (Hash, error) {
	var h Hash
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("could not decode hex: %w", err)
	}
	if len(b) != Len {
		return h, fmt.Errorf("invalid hash length: expected %d bytes, got %d", Len, len(b))
	}
	copy(h[:], b)
	return h, nil
}

// MustFromHex parses a hex encoded hash and panics on failure. Only meant for constants
// and tests.
func MustFromHex(s string) Hash {
	h, err := FromHex(s)
	if err != nil {
		panic(err)
	}
	return h
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether h equals ZeroHash.
func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// MarshalText implements encoding.TextMarshaler so hashes render as hex in YAML/JSON.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := FromHex(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
