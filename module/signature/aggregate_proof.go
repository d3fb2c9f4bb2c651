package signature

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/bits-and-blooms/bitset"
	"github.com/onflow/flow-go/crypto"
	"github.com/rs/zerolog"

	"github.com/finalitylabs/qcert/model/pbft"
	"github.com/finalitylabs/qcert/model/validator"
	"github.com/finalitylabs/qcert/module/packer"
)

// AggregateProof accumulates signatures of distinct validators over the same message into
// one aggregate signature.
//
// The first accepted signature fixes the message content; signatures over any other
// content are rejected until Clear is called. A validator slot contributes at most once.
//
// AggregateProof is safe for concurrent use: adding and clearing are exclusive, reads may
// run concurrently with each other.
type AggregateProof[T Message] struct {
	log    zerolog.Logger
	scheme Scheme

	lock      sync.RWMutex
	signers   *bitset.BitSet
	signature crypto.Signature // nil while no signer contributed
	weight    uint64
	content   []byte // signing bytes of the aggregated message, nil while empty
	message   T
}

// NewAggregateProof returns an empty proof.
func NewAggregateProof[T Message](scheme Scheme, log zerolog.Logger) *AggregateProof[T] {
	var msg T
	return &AggregateProof[T]{
		log:     log.With().Str("component", "aggregate_proof").Uint8("prefix", msg.Prefix()).Logger(),
		scheme:  scheme,
		signers: bitset.New(0),
	}
}

// VerifyAndAdd verifies the signed message under pk and folds its signature into the
// aggregate, adding weight to the running weight. The proof is unchanged if an error is
// returned.
//
// Expected errors during normal operations:
//   - DuplicatedSignerError if the signer slot already contributed
//   - MessageMismatchError if the message differs from the one being aggregated
//   - ErrInvalidSignature if the signature is not valid for the message under pk
//   - ErrInvalidFormat if the message cannot be encoded or the signature cannot be aggregated
//   - ErrInvalidInputs if signed is nil
func (p *AggregateProof[T]) VerifyAndAdd(pk crypto.PublicKey, weight uint16, signed *SignedMessage[T]) error {
	if signed == nil {
		return fmt.Errorf("nil signed message: %w", ErrInvalidInputs)
	}
	msgBytes, err := SigningBytes(DefaultEncoder, signed.Message)
	if err != nil {
		return fmt.Errorf("%v: %w", err, ErrInvalidFormat)
	}

	// duplicates and mismatches are rejected before verifying the signature
	p.lock.RLock()
	err = p.checkAddable(signed.SignerIndex, msgBytes)
	p.lock.RUnlock()
	if err != nil {
		return err
	}

	if !p.scheme.Verify(pk, msgBytes, signed.Signature) {
		return fmt.Errorf("signature of slot %d does not verify: %w", signed.SignerIndex, ErrInvalidSignature)
	}

	p.lock.Lock()
	defer p.lock.Unlock()

	// another goroutine may have added the same signer or pinned other content meanwhile
	err = p.checkAddable(signed.SignerIndex, msgBytes)
	if err != nil {
		return err
	}

	aggregate := append(crypto.Signature(nil), signed.Signature...)
	if p.signature != nil {
		aggregate, err = p.scheme.Aggregate([]crypto.Signature{p.signature, signed.Signature})
		if err != nil {
			return fmt.Errorf("could not aggregate signature of slot %d: %w", signed.SignerIndex, err)
		}
	}

	p.signers.Set(uint(signed.SignerIndex))
	p.signature = aggregate
	p.weight += uint64(weight)
	if p.content == nil {
		p.content = msgBytes
		p.message = signed.Message
	}
	return nil
}

// checkAddable must be called while holding the lock.
func (p *AggregateProof[T]) checkAddable(signerIndex uint16, msgBytes []byte) error {
	if p.signers.Test(uint(signerIndex)) {
		return NewDuplicatedSignerError(signerIndex)
	}
	if p.content != nil && !bytes.Equal(p.content, msgBytes) {
		return NewMessageMismatchErrorf("slot %d signed a different message than the aggregated one", signerIndex)
	}
	return nil
}

// AddSignature is VerifyAndAdd reporting only whether the signature was accepted.
// Rejected signatures leave the proof unchanged.
func (p *AggregateProof[T]) AddSignature(pk crypto.PublicKey, weight uint16, signed *SignedMessage[T]) bool {
	err := p.VerifyAndAdd(pk, weight, signed)
	if err != nil {
		lg := p.log.Debug().Err(err)
		if signed != nil {
			lg = lg.Uint16("signer_index", signed.SignerIndex)
		}
		lg.Msg("signature rejected")
		return false
	}
	return true
}

// Verify returns true if and only if the signers hold more than threshold weight and the
// aggregate signature is valid for msg under exactly the signers' public keys. Keys and
// weights are looked up in validators at call time.
func (p *AggregateProof[T]) Verify(validators validator.Lookup, msg T, threshold uint16) bool {
	msgBytes, err := SigningBytes(DefaultEncoder, msg)
	if err != nil {
		return false
	}

	p.lock.RLock()
	defer p.lock.RUnlock()

	err = VerifyQuorum(p.scheme, validators, p.signers, msgBytes, p.signature, threshold)
	if err != nil {
		p.log.Debug().Err(err).Msg("proof does not verify")
		return false
	}
	return true
}

// Clear resets the proof to the empty state. Clearing an empty proof is a no-op.
func (p *AggregateProof[T]) Clear() {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.signers.ClearAll()
	p.signature = nil
	p.weight = 0
	p.content = nil
	var empty T
	p.message = empty
}

// Message returns the message being aggregated, or false for an empty proof.
func (p *AggregateProof[T]) Message() (T, bool) {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return p.message, p.content != nil
}

// Weight returns the sum of weights supplied when adding the current signers.
func (p *AggregateProof[T]) Weight() uint64 {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return p.weight
}

// Len returns the number of signers.
func (p *AggregateProof[T]) Len() int {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return int(p.signers.Count())
}

// Signers returns the signer slots in increasing order.
func (p *AggregateProof[T]) Signers() []uint16 {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return packer.Indices(p.signers)
}

// SignerSet returns a copy of the signer set.
func (p *AggregateProof[T]) SignerSet() *bitset.BitSet {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return p.signers.Clone()
}

// Signature returns a copy of the aggregate signature, nil for an empty proof.
func (p *AggregateProof[T]) Signature() crypto.Signature {
	p.lock.RLock()
	defer p.lock.RUnlock()
	if p.signature == nil {
		return nil
	}
	sig := make(crypto.Signature, len(p.signature))
	copy(sig, p.signature)
	return sig
}

// Snapshot returns the transferable form of the proof, with the signers packed into a bit
// vector sized for validators.
//
// Expected errors:
//   - ErrEmptyProof if no signer contributed
//   - InvalidSignerError if a signer slot is outside of validators
func (p *AggregateProof[T]) Snapshot(validators validator.Lookup) (pbft.AggregateSignature, error) {
	p.lock.RLock()
	defer p.lock.RUnlock()

	if p.signature == nil {
		return pbft.AggregateSignature{}, ErrEmptyProof
	}
	signers, err := packer.EncodeSigners(p.signers, validators.Size())
	if err != nil {
		return pbft.AggregateSignature{}, NewInvalidSignerErrorf("could not pack signers: %w", err)
	}
	sig := make([]byte, len(p.signature))
	copy(sig, p.signature)
	return pbft.AggregateSignature{
		Signers:   signers,
		Signature: sig,
	}, nil
}

const maxSlot = uint(^uint16(0))

// SignersWeight sums the weights of the signers in validators.
//
// Expected errors:
//   - InvalidSignerError if a signer slot is not in validators
func SignersWeight(validators validator.Lookup, signers *bitset.BitSet) (uint64, error) {
	list, err := signerValidators(validators, signers)
	if err != nil {
		return 0, err
	}
	var weight uint64
	for _, v := range list {
		weight += uint64(v.Weight)
	}
	return weight, nil
}

// signerValidators resolves the members of signers to validators in slot order.
func signerValidators(validators validator.Lookup, signers *bitset.BitSet) ([]*validator.Validator, error) {
	for i, ok := signers.NextSet(0); ok; i, ok = signers.NextSet(i + 1) {
		if i > maxSlot {
			return nil, NewInvalidSignerErrorf("slot %d is not in the validator set", i)
		}
	}
	list, err := packer.FilterByIndices(validators, packer.Indices(signers))
	if err != nil {
		return nil, NewInvalidSignerErrorf("unknown signer: %w", err)
	}
	return list, nil
}

// VerifyQuorum checks that signers hold more than threshold weight in validators and that
// sig is a valid aggregate over msg by exactly the signers.
//
// Expected errors:
//   - ErrEmptyProof if there are no signers
//   - InvalidSignerError if a signer slot is not in validators
//   - InsufficientWeightError if the signers do not exceed threshold
//   - ErrInvalidSignature if the aggregate does not verify
func VerifyQuorum(scheme Scheme, validators validator.Lookup, signers *bitset.BitSet, msg []byte, sig crypto.Signature, threshold uint16) error {
	if signers.None() || len(sig) == 0 {
		return ErrEmptyProof
	}

	list, err := signerValidators(validators, signers)
	if err != nil {
		return err
	}
	pks := make([]crypto.PublicKey, 0, len(list))
	var weight uint64
	for _, v := range list {
		pks = append(pks, v.PublicKey)
		weight += uint64(v.Weight)
	}
	if weight <= uint64(threshold) {
		return InsufficientWeightError{Weight: weight, Threshold: threshold}
	}
	if !scheme.VerifyAggregate(pks, msg, sig) {
		return fmt.Errorf("aggregate of %d signers does not verify: %w", len(pks), ErrInvalidSignature)
	}
	return nil
}

// IsExpectedVoteError returns whether err is one of the errors returned by VerifyAndAdd for
// votes that are invalid, duplicated or for other content.
func IsExpectedVoteError(err error) bool {
	return IsDuplicatedSignerError(err) ||
		IsMessageMismatchError(err) ||
		errors.Is(err, ErrInvalidSignature) ||
		errors.Is(err, ErrInvalidFormat) ||
		errors.Is(err, ErrInvalidInputs)
}
