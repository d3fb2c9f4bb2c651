package operation

import (
	"encoding/binary"
	"fmt"

	"github.com/finalitylabs/qcert/model/hash"
)

const (

	// codes for finality certificates

	codeCertificate           = 10 // block hash -> certificate
	codeBlockNumberToHash     = 11 // macro block number -> block hash
	codeViewChangeCertificate = 12 // block number + view -> view change certificate
	codeBlockHashToNumber     = 13 // block hash -> macro block number
)

func makePrefix(code byte, keys ...interface{}) []byte {
	prefix := make([]byte, 1)
	prefix[0] = code
	for _, key := range keys {
		prefix = append(prefix, b(key)...)
	}
	return prefix
}

func b(v interface{}) []byte {
	switch i := v.(type) {
	case uint8:
		return []byte{i}
	case uint32:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, i)
		return b
	case uint64:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, i)
		return b
	case hash.Hash:
		return i[:]
	default:
		panic(fmt.Sprintf("unsupported type to convert (%T)", v))
	}
}
