package pbft

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"

	model "github.com/finalitylabs/qcert/model/pbft"
	"github.com/finalitylabs/qcert/model/validator"
	"github.com/finalitylabs/qcert/module/packer"
	"github.com/finalitylabs/qcert/module/signature"
)

// VerifyCertificate checks that cert proves finality of cert.BlockHash under validators.
// It needs nothing but the certificate and the validators' public keys and weights.
//
// Expected errors during normal operations:
//   - ErrInvalidCertificate if the certificate is not valid, wrapping the reason
func VerifyCertificate(scheme signature.Scheme, validators validator.Lookup, cert *model.Certificate, threshold uint16) error {
	if cert == nil {
		return fmt.Errorf("nil certificate: %w", ErrInvalidCertificate)
	}

	prepareSigners, err := verifyAggregate(scheme, validators, model.NewPrepareMessage(cert.BlockHash), cert.Prepare, threshold)
	if err != nil {
		return fmt.Errorf("invalid prepare aggregate for block %v: %w: %w", cert.BlockHash, ErrInvalidCertificate, err)
	}
	commitSigners, err := verifyAggregate(scheme, validators, model.NewCommitMessage(cert.BlockHash), cert.Commit, threshold)
	if err != nil {
		return fmt.Errorf("invalid commit aggregate for block %v: %w: %w", cert.BlockHash, ErrInvalidCertificate, err)
	}

	weight, err := signature.SignersWeight(validators, prepareSigners.Intersection(commitSigners))
	if err != nil {
		return fmt.Errorf("could not compute weight of validators in both phases: %w: %w", ErrInvalidCertificate, err)
	}
	if weight <= uint64(threshold) {
		return fmt.Errorf("validators in both phases hold weight %d, threshold is %d: %w",
			weight, threshold, ErrInvalidCertificate)
	}
	return nil
}

// VerifyViewChangeCertificate checks that more than threshold weight signed the view change
// carried by cert.
//
// Expected errors during normal operations:
//   - ErrInvalidCertificate if the certificate is not valid, wrapping the reason
func VerifyViewChangeCertificate(scheme signature.Scheme, validators validator.Lookup, cert *model.ViewChangeCertificate, threshold uint16) error {
	if cert == nil {
		return fmt.Errorf("nil view change certificate: %w", ErrInvalidCertificate)
	}
	_, err := verifyAggregate(scheme, validators, cert.ViewChange, cert.Proof, threshold)
	if err != nil {
		return fmt.Errorf("invalid view change aggregate for block %d view %d: %w: %w",
			cert.ViewChange.BlockNumber, cert.ViewChange.NewView, ErrInvalidCertificate, err)
	}
	return nil
}

func verifyAggregate(scheme signature.Scheme, validators validator.Lookup, msg signature.Message, agg model.AggregateSignature, threshold uint16) (*bitset.BitSet, error) {
	signers, err := packer.DecodeSigners(agg.Signers, validators.Size())
	if err != nil {
		return nil, fmt.Errorf("could not decode signers: %w", err)
	}
	msgBytes, err := signature.SigningBytes(signature.DefaultEncoder, msg)
	if err != nil {
		return nil, fmt.Errorf("could not compute signing bytes: %w", err)
	}
	err = signature.VerifyQuorum(scheme, validators, signers, msgBytes, agg.Signature, threshold)
	if err != nil {
		return nil, err
	}
	return signers, nil
}
