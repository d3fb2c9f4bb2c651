package pbft

import (
	"github.com/finalitylabs/qcert/model/hash"
)

// AggregateSignature is the immutable, transferable form of an aggregate proof: the signer
// slots packed into a bit vector and one aggregated BLS signature. It does not carry the
// signed payload; verifiers must supply it.
type AggregateSignature struct {
	_ struct{} `cbor:",toarray"`
	// Signers is a bit vector over validator slots, most significant bit first.
	Signers []byte
	// Signature is the aggregate of all signers' signatures.
	Signature []byte
}

// Certificate is the finality proof for a macro block: prepare and commit aggregates over
// the same block hash.
type Certificate struct {
	_         struct{} `cbor:",toarray"`
	BlockHash hash.Hash
	Prepare   AggregateSignature
	Commit    AggregateSignature
}

// ViewChangeCertificate proves that a quorum agreed to leave the current view.
type ViewChangeCertificate struct {
	_          struct{} `cbor:",toarray"`
	ViewChange ViewChangeMessage
	Proof      AggregateSignature
}
