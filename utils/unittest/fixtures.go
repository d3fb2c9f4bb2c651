package unittest

import (
	"crypto/rand"

	"github.com/onflow/flow-go/crypto"

	"github.com/finalitylabs/qcert/model/hash"
	"github.com/finalitylabs/qcert/model/pbft"
	"github.com/finalitylabs/qcert/model/validator"
)

// HashFixture returns a random block hash.
func HashFixture() hash.Hash {
	var h hash.Hash
	_, _ = rand.Read(h[:])
	return h
}

// HashListFixture returns n distinct random block hashes.
func HashListFixture(n int) []hash.Hash {
	list := make([]hash.Hash, 0, n)
	for i := 0; i < n; i++ {
		list = append(list, HashFixture())
	}
	return list
}

// WithWeights sets the weight of each validator, in slot order. Validators without an
// entry keep the default weight of 1.
func WithWeights(weights ...uint16) func([]validator.Validator) {
	return func(vs []validator.Validator) {
		for i := range vs {
			if i < len(weights) {
				vs[i].Weight = weights[i]
			}
		}
	}
}

// ValidatorSetFixture builds a validator set from the given keys. Every validator has weight
// 1 unless options say otherwise.
func ValidatorSetFixture(keys []crypto.PrivateKey, opts ...func([]validator.Validator)) *validator.Set {
	vs := make([]validator.Validator, 0, len(keys))
	for i, sk := range keys {
		vs = append(vs, validator.Validator{
			Index:     uint16(i),
			PublicKey: sk.PublicKey(),
			Weight:    1,
		})
	}
	for _, apply := range opts {
		apply(vs)
	}
	set, err := validator.NewSet(vs)
	if err != nil {
		panic(err)
	}
	return set
}

// AggregateSignatureFixture returns an aggregate with random signer bits and signature
// bytes. It does not verify.
func AggregateSignatureFixture() pbft.AggregateSignature {
	signers := make([]byte, 2)
	signature := make([]byte, crypto.SignatureLenBLSBLS12381)
	_, _ = rand.Read(signers)
	_, _ = rand.Read(signature)
	return pbft.AggregateSignature{Signers: signers, Signature: signature}
}

// CertificateFixture returns a certificate for a random block with random aggregates.
func CertificateFixture() *pbft.Certificate {
	return &pbft.Certificate{
		BlockHash: HashFixture(),
		Prepare:   AggregateSignatureFixture(),
		Commit:    AggregateSignatureFixture(),
	}
}

// ViewChangeCertificateFixture returns a view change certificate with a random aggregate.
func ViewChangeCertificateFixture(blockNumber uint32, newView uint32) *pbft.ViewChangeCertificate {
	return &pbft.ViewChangeCertificate{
		ViewChange: pbft.ViewChangeMessage{BlockNumber: blockNumber, NewView: newView},
		Proof:      AggregateSignatureFixture(),
	}
}
