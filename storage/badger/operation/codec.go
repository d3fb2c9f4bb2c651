package operation

import (
	"errors"
	"fmt"

	"github.com/golang/snappy"
	"github.com/vmihailenco/msgpack/v4"
)

var errUncompressedValue = errors.New("could not uncompress data")

// encodeEntity encodes the given entity using msgpack and compresses it with snappy.
func encodeEntity(entity interface{}) ([]byte, error) {
	val, err := msgpack.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("could not encode entity: %w", err)
	}

	// compress the serialized data using Snappy
	return snappy.Encode(nil, val), nil
}

// decodeValue uncompresses the given value and decodes it into the given entity using msgpack.
func decodeValue(val []byte, entity interface{}) error {
	// uncompress the value using Snappy
	uncompressedVal, err := snappy.Decode(nil, val)
	if err != nil {
		return fmt.Errorf("%s: %w", err, errUncompressedValue)
	}

	// decode the entity using msgpack
	err = msgpack.Unmarshal(uncompressedVal, entity)
	if err != nil {
		return fmt.Errorf("could not decode entity: %w", err)
	}
	return nil
}

func isErrUncompressedValue(err error) bool {
	return errors.Is(err, errUncompressedValue)
}
