package validator

import (
	"fmt"

	"github.com/onflow/flow-go/crypto"
)

// Validator is one slot of the validator table: its staking public key and its voting
// weight. Proofs refer to validators only by Index.
type Validator struct {
	Index     uint16
	PublicKey crypto.PublicKey
	Weight    uint16
}

// Lookup resolves a validator slot index to the validator's key and weight. It is supplied
// fresh on every verification so a proof never caches weights across validator set changes.
type Lookup interface {
	// ByIndex returns the validator at the given slot, or false if there is none.
	ByIndex(index uint16) (*Validator, bool)
	// Size returns the number of slots; valid indices are [0, Size).
	Size() int
}

var _ Lookup = (*Set)(nil)

// Set is an immutable, index-addressed validator table.
type Set struct {
	validators  []Validator
	totalWeight uint64
}

// NewSet builds a validator set. Validators must be given in slot order starting at 0, with
// a BLS public key and a non-zero weight.
func NewSet(validators []Validator) (*Set, error) {
	if len(validators) == 0 {
		return nil, fmt.Errorf("validator set must not be empty")
	}
	if len(validators) > 1<<16 {
		return nil, fmt.Errorf("too many validators: %d", len(validators))
	}

	s := &Set{validators: make([]Validator, len(validators))}
	for i, v := range validators {
		if int(v.Index) != i {
			return nil, fmt.Errorf("validator at position %d has index %d", i, v.Index)
		}
		if v.PublicKey == nil {
			return nil, fmt.Errorf("validator %d has no public key", v.Index)
		}
		if v.PublicKey.Algorithm() != crypto.BLSBLS12381 {
			return nil, fmt.Errorf("validator %d has a %s key, expected %s", v.Index, v.PublicKey.Algorithm(), crypto.BLSBLS12381)
		}
		if v.Weight == 0 {
			return nil, fmt.Errorf("validator %d has zero weight", v.Index)
		}
		s.validators[i] = v
		s.totalWeight += uint64(v.Weight)
	}
	return s, nil
}

func (s *Set) ByIndex(index uint16) (*Validator, bool) {
	if int(index) >= len(s.validators) {
		return nil, false
	}
	v := s.validators[index]
	return &v, true
}

func (s *Set) Size() int {
	return len(s.validators)
}

// TotalWeight returns the sum of all validators' weights.
func (s *Set) TotalWeight() uint64 {
	return s.totalWeight
}

// QuorumThreshold returns the largest weight that is NOT a quorum: a proof is valid when its
// signers' weight is strictly greater than this value, i.e. more than two thirds of the
// total weight. For four validators of weight one it is 2, so three signers are required.
func (s *Set) QuorumThreshold() uint16 {
	t := 2 * s.totalWeight / 3
	if t > uint64(^uint16(0)) {
		return ^uint16(0)
	}
	return uint16(t)
}

// Validators returns a copy of all validators in slot order.
func (s *Set) Validators() []Validator {
	out := make([]Validator, len(s.validators))
	copy(out, s.validators)
	return out
}
