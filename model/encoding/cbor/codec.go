package cbor

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	cbor "github.com/fxamacker/cbor/v2"

	"github.com/finalitylabs/qcert/model/encoding"
)

// EncMode uses the Core Deterministic Encoding from RFC 8949: preferred serialization of
// integers and floats, map keys sorted bytewise-lexicographically. Two nodes encoding the
// same value therefore sign identical bytes.
var EncMode = func() cbor.EncMode {
	encMode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return encMode
}()

// DecMode rejects duplicate map keys and unknown fields, so that exactly one byte string
// decodes to a given value.
var DecMode = func() cbor.DecMode {
	decMode, err := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
		MaxArrayElements:  1 << 16,
		MaxMapPairs:       1 << 16,
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return decMode
}()

var _ encoding.Encoder = (*Encoder)(nil)

// Encoder is the canonical CBOR implementation of encoding.Encoder.
type Encoder struct{}

// NewEncoder returns a new canonical CBOR encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

func (e *Encoder) Encode(val interface{}) ([]byte, error) {
	b, err := EncMode.Marshal(val)
	if err != nil {
		return nil, fmt.Errorf("could not encode value: %w", err)
	}
	return b, nil
}

// Decode decodes exactly one CBOR item; bytes following it are rejected.
func (e *Encoder) Decode(b []byte, val interface{}) error {
	dec := DecMode.NewDecoder(bytes.NewReader(b))
	err := dec.Decode(val)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return encoding.NewDecodeError(encoding.ErrUnexpectedEnd, err)
		}
		return encoding.NewDecodeError(encoding.ErrBadEncoding, err)
	}
	if dec.NumBytesRead() != len(b) {
		return encoding.NewDecodeError(encoding.ErrBadEncoding,
			fmt.Errorf("%d trailing bytes after value", len(b)-dec.NumBytesRead()))
	}
	return nil
}

func (e *Encoder) MustEncode(val interface{}) []byte {
	b, err := e.Encode(val)
	if err != nil {
		panic(err)
	}
	return b
}

func (e *Encoder) MustDecode(b []byte, val interface{}) {
	err := e.Decode(b, val)
	if err != nil {
		panic(err)
	}
}
