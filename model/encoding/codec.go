package encoding

import (
	"errors"
	"fmt"
)

// Encoder encodes and decodes values to and from bytes.
//
// Signatures are computed over the output of Encode, therefore implementations used for
// signing must be deterministic: the same logical value always yields the same bytes,
// independent of process, platform or prior calls.
type Encoder interface {
	// Encode encodes a value as bytes.
	//
	// This function returns an error if the value type is not supported by this encoder.
	Encode(interface{}) ([]byte, error)

	// Decode decodes bytes into a value.
	//
	// Expected errors:
	//   - ErrUnexpectedEnd if the input is truncated
	//   - ErrBadEncoding if the input is malformed or does not fit the provided value type
	Decode([]byte, interface{}) error

	// MustEncode encodes a value as bytes.
	//
	// This functions panic if encoding fails.
	MustEncode(interface{}) []byte

	// MustDecode decodes bytes into a value.
	//
	// This functions panic if decoding fails.
	MustDecode([]byte, interface{})
}

var (
	// ErrUnexpectedEnd is returned when the input ends before a complete value was read.
	ErrUnexpectedEnd = errors.New("unexpected end of input")
	// ErrBadEncoding is returned when the input is not a valid encoding of the target type.
	ErrBadEncoding = errors.New("bad encoding")
)

// DecodeError wraps a codec specific failure together with its classification
// (ErrUnexpectedEnd or ErrBadEncoding).
type DecodeError struct {
	kind error
	err  error
}

// NewDecodeError classifies a codec failure.
func NewDecodeError(kind error, err error) error {
	return DecodeError{kind: kind, err: err}
}

func (e DecodeError) Error() string {
	return fmt.Sprintf("%s: %s", e.kind.Error(), e.err.Error())
}

// Is makes errors.Is(err, ErrUnexpectedEnd) and errors.Is(err, ErrBadEncoding) work.
func (e DecodeError) Is(target error) bool {
	return target == e.kind
}

func (e DecodeError) Unwrap() error { return e.err }

// IsDecodeError returns whether err is a DecodeError
func IsDecodeError(err error) bool {
	var e DecodeError
	return errors.As(err, &e)
}
