package signature

import (
	"fmt"

	"github.com/onflow/flow-go/crypto"
)

// Scheme is the signature capability used by the proof accumulators. It abstracts the
// concrete aggregatable signature algorithm from the PBFT logic.
//
// Implementations must be safe for concurrent use.
type Scheme interface {
	// Sign signs msg with the private key.
	Sign(sk crypto.PrivateKey, msg []byte) (crypto.Signature, error)

	// Verify returns true if and only if sig is a valid signature of msg under pk.
	// It does not return expected errors; malformed signatures and keys verify as false.
	Verify(pk crypto.PublicKey, msg []byte, sig crypto.Signature) bool

	// Aggregate combines signatures into one signature of the same length.
	// Expected errors:
	//   - ErrInvalidInputs if sigs is empty
	//   - ErrInvalidFormat if any of the signatures cannot be deserialized
	Aggregate(sigs []crypto.Signature) (crypto.Signature, error)

	// VerifyAggregate returns true if and only if aggSig is a valid aggregate of signatures
	// over the same msg by exactly the holders of pks. An empty key list never verifies.
	VerifyAggregate(pks []crypto.PublicKey, msg []byte, aggSig crypto.Signature) bool
}

// BLSScheme implements Scheme with BLS signatures on BLS12-381, hashing messages with a
// KMAC-based hasher scoped to a domain tag.
type BLSScheme struct {
	tag string
}

var _ Scheme = (*BLSScheme)(nil)

// NewBLSScheme returns a BLS scheme for the given domain separation tag.
func NewBLSScheme(tag string) *BLSScheme {
	return &BLSScheme{tag: tag}
}

// NewPBFTScheme returns the BLS scheme used for all PBFT votes.
func NewPBFTScheme() *BLSScheme {
	return NewBLSScheme(PBFTVoteTag)
}

// Sign signs msg with sk. A hasher is created per call since hashers are not safe for
// concurrent use.
func (s *BLSScheme) Sign(sk crypto.PrivateKey, msg []byte) (crypto.Signature, error) {
	if sk == nil || sk.Algorithm() != crypto.BLSBLS12381 {
		return nil, fmt.Errorf("expected a BLS private key: %w", ErrInvalidInputs)
	}
	sig, err := sk.Sign(msg, NewBLSHasher(s.tag))
	if err != nil {
		return nil, fmt.Errorf("could not sign message: %w", err)
	}
	return sig, nil
}

func (s *BLSScheme) Verify(pk crypto.PublicKey, msg []byte, sig crypto.Signature) bool {
	if pk == nil || pk.Algorithm() != crypto.BLSBLS12381 {
		return false
	}
	valid, err := pk.Verify(sig, msg, NewBLSHasher(s.tag))
	if err != nil {
		return false
	}
	return valid
}

func (s *BLSScheme) Aggregate(sigs []crypto.Signature) (crypto.Signature, error) {
	if len(sigs) == 0 {
		return nil, fmt.Errorf("no signatures to aggregate: %w", ErrInvalidInputs)
	}
	aggSig, err := crypto.AggregateBLSSignatures(sigs)
	if err != nil {
		if crypto.IsInvalidSignatureError(err) {
			return nil, fmt.Errorf("signature cannot be deserialized: %w", ErrInvalidFormat)
		}
		return nil, fmt.Errorf("unexpected error aggregating signatures: %w", err)
	}
	return aggSig, nil
}

func (s *BLSScheme) VerifyAggregate(pks []crypto.PublicKey, msg []byte, aggSig crypto.Signature) bool {
	if len(pks) == 0 || len(aggSig) == 0 {
		return false
	}
	for _, pk := range pks {
		if pk == nil || pk.Algorithm() != crypto.BLSBLS12381 {
			return false
		}
	}
	valid, err := crypto.VerifyBLSSignatureOneMessage(pks, aggSig, msg, NewBLSHasher(s.tag))
	if err != nil {
		return false
	}
	return valid
}
