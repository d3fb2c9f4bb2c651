package packer

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// EncodeSignerIndices encodes indices into compacted bit vector. Each bit represents whether the validator at
// that slot is a signer.
// Note, the indices in the first argument must be in the strict increasing order and smaller than count,
// otherwise, decoding the signer indices will not recover to the original indices.
// An error will return if indices is not ordered correctly.
func EncodeSignerIndices(indices []uint16, count int) ([]byte, error) {
	totalBytes := bytesCount(count)
	bytes := make([]byte, totalBytes)
	for i, index := range indices {
		if i > 0 {
			if index <= indices[i-1] {
				return nil, fmt.Errorf(
					"the indices are not in strict increasing order, %v (indices[%v]) must < %v (indices[%v])",
					indices[i-1], i-1,
					indices[i], i)
			}
		}
		if int(index) >= count {
			return nil, fmt.Errorf("signer index %v is out of range, count is %v", index, count)
		}

		byt := index >> 3
		offset := 7 - (index & 7)
		mask := byte(1 << offset)
		bytes[byt] ^= mask
	}
	return bytes, nil
}

// DecodeSignerIndices decodes the given compacted signer indices to a slice of indices.
func DecodeSignerIndices(indices []byte, count int) ([]uint16, error) {
	if bytesCount(count) != len(indices) {
		return nil, fmt.Errorf("signer indices has wrong count, expect count %v, but actually got %v",
			bytesCount(count), len(indices))
	}

	signerIndices := make([]uint16, 0, count)

	for index := 0; index < count; index++ {
		byt := indices[index>>3]
		offset := 7 - (index & 7)
		mask := byte(1 << offset)
		if byt&mask > 0 {
			signerIndices = append(signerIndices, uint16(index))
		}
	}

	// remaining bits (if any), they must be all `0`s
	if count&7 != 0 {
		last := indices[len(indices)-1]
		remainings := last << (count & 7)
		if remainings != byte(0) {
			return nil, fmt.Errorf("the remaining bites are expected to be all 0s, but are %v", remainings)
		}
	}

	return signerIndices, nil
}

// EncodeSigners packs a signer set into the bit vector format of EncodeSignerIndices.
func EncodeSigners(signers *bitset.BitSet, count int) ([]byte, error) {
	return EncodeSignerIndices(Indices(signers), count)
}

// DecodeSigners unpacks a bit vector into a signer set.
func DecodeSigners(indices []byte, count int) (*bitset.BitSet, error) {
	decoded, err := DecodeSignerIndices(indices, count)
	if err != nil {
		return nil, err
	}
	signers := bitset.New(uint(count))
	for _, index := range decoded {
		signers.Set(uint(index))
	}
	return signers, nil
}

// Indices lists the members of a signer set in increasing order.
func Indices(signers *bitset.BitSet) []uint16 {
	indices := make([]uint16, 0, signers.Count())
	for i, ok := signers.NextSet(0); ok; i, ok = signers.NextSet(i + 1) {
		indices = append(indices, uint16(i))
	}
	return indices
}

func bytesCount(count int) int {
	return (count + 7) >> 3
}
