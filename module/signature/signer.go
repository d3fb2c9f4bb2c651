package signature

import (
	"fmt"

	"github.com/onflow/flow-go/crypto"
)

// Signer signs protocol messages on behalf of one validator.
type Signer interface {
	// Sign signs the domain-separated bytes of msg.
	Sign(msg Message) (crypto.Signature, error)
}

// LocalSigner signs with a private key held in memory.
type LocalSigner struct {
	scheme Scheme
	sk     crypto.PrivateKey
}

var _ Signer = (*LocalSigner)(nil)

func NewLocalSigner(scheme Scheme, sk crypto.PrivateKey) *LocalSigner {
	return &LocalSigner{
		scheme: scheme,
		sk:     sk,
	}
}

func (s *LocalSigner) Sign(msg Message) (crypto.Signature, error) {
	msgBytes, err := SigningBytes(DefaultEncoder, msg)
	if err != nil {
		return nil, fmt.Errorf("could not compute signing bytes: %w", err)
	}
	sig, err := s.scheme.Sign(s.sk, msgBytes)
	if err != nil {
		return nil, fmt.Errorf("could not sign message: %w", err)
	}
	return sig, nil
}

// PublicKey returns the public key matching the signing key.
func (s *LocalSigner) PublicKey() crypto.PublicKey {
	return s.sk.PublicKey()
}
