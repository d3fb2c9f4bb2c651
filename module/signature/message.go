package signature

import (
	"fmt"

	"github.com/finalitylabs/qcert/model/encoding"
	"github.com/finalitylabs/qcert/model/encoding/cbor"
)

// Message is a payload with a protocol prefix. The prefix is constant per message role
// and distinct across roles, so that a signature over one role never verifies as a
// signature over another.
type Message interface {
	Prefix() byte
}

// DefaultEncoder is the canonical encoder used to derive signed bytes.
var DefaultEncoder encoding.Encoder = cbor.NewEncoder()

// SigningBytes returns the bytes a validator signs for msg: the one byte prefix followed
// by the deterministic encoding of msg.
func SigningBytes(enc encoding.Encoder, msg Message) ([]byte, error) {
	payload, err := enc.Encode(msg)
	if err != nil {
		return nil, fmt.Errorf("could not encode message with prefix %#02x: %w", msg.Prefix(), err)
	}
	b := make([]byte, 0, len(payload)+1)
	b = append(b, msg.Prefix())
	return append(b, payload...), nil
}
