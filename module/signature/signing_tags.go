package signature

import (
	"github.com/onflow/flow-go/crypto"
	"github.com/onflow/flow-go/crypto/hash"
)

// List of domain separation tags for protocol signatures.
//
// Protocol-level signature uses BLS signature scheme.
// Each signature involves hashing the signed bytes during the
// the hash to curve operation.
// To scope the signature to a specific sub-protocol and simulate multiple
// orthogonal random oracles, the hashing process includes a domain separation tag specific
// to where the signature is used. Within a sub-protocol, the one byte message prefix
// (see SigningBytes) separates the message roles.

// protocol prefix
const protocolPrefix = "QCERT-"

// protocol version
const protocolVersion = "-V00-"

// Ciphersuite index
// Only one ciphersuite is used in the protocol
const cipherSuiteIndex = "CS00-"

// an example of domain tag output is :
// QCERT-CERTAIN_DOMAIN-V00-CS00-with-cipherSuite
// where cipherSuite is fixed by the crypto library
func tag(domain string) string {
	return protocolPrefix + domain + protocolVersion + cipherSuiteIndex + "with-"
}

var (
	// all the tags below are application tags, the crypto library API guarantees
	// that all application tags are different than the tag used to generate
	// proofs of possession of BLS private keys.

	// PBFTVoteTag is used for macro block proposals, prepare, commit and view change votes
	PBFTVoteTag = tag("PBFT_Vote")
)

// NewBLSHasher returns a hasher to be used for BLS signing and verifying
// in the protocol and abstracts the hasher details from the protocol logic.
//
// The hasher returned is the the expand-message step in the BLS hash-to-curve.
// It uses a xof (extendable output function) based on KMAC128. It therefore has
// 128-bytes outputs.
func NewBLSHasher(tag string) hash.Hasher {
	return crypto.NewExpandMsgXOFKMAC128(tag)
}
