package signature

import (
	"fmt"

	"github.com/onflow/flow-go/crypto"
)

// SignedMessage is a message together with the signature of one validator over its
// domain-separated bytes. SignerIndex is the validator's slot in the validator set.
// A SignedMessage is not modified after creation.
type SignedMessage[T Message] struct {
	_           struct{} `cbor:",toarray"`
	Message     T
	SignerIndex uint16
	Signature   crypto.Signature
}

// NewSignedMessage signs msg with signer on behalf of the validator at signerIndex.
func NewSignedMessage[T Message](msg T, signerIndex uint16, signer Signer) (*SignedMessage[T], error) {
	sig, err := signer.Sign(msg)
	if err != nil {
		return nil, fmt.Errorf("could not sign message for slot %d: %w", signerIndex, err)
	}
	return &SignedMessage[T]{
		Message:     msg,
		SignerIndex: signerIndex,
		Signature:   sig,
	}, nil
}

// Verify returns true if and only if the signature is valid for the message under pk.
// Encoding failures verify as false.
func (m *SignedMessage[T]) Verify(scheme Scheme, pk crypto.PublicKey) bool {
	msgBytes, err := SigningBytes(DefaultEncoder, m.Message)
	if err != nil {
		return false
	}
	return scheme.Verify(pk, msgBytes, m.Signature)
}
