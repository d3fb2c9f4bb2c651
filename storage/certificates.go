package storage

import (
	"github.com/finalitylabs/qcert/model/hash"
	"github.com/finalitylabs/qcert/model/pbft"
)

// Certificates represents persistent storage for finality certificates of macro blocks.
type Certificates interface {

	// Store stores the certificate, keyed by its block hash.
	// Returns ErrAlreadyExists if a certificate for the block is already stored.
	Store(cert *pbft.Certificate) error

	// ByBlockHash returns the certificate of the given block.
	// Returns ErrNotFound if no certificate is stored for the block.
	ByBlockHash(blockHash hash.Hash) (*pbft.Certificate, error)

	// Exists returns whether a certificate is stored for the block.
	Exists(blockHash hash.Hash) (bool, error)

	// IndexFinalized records the block hash of the macro block finalized at number. The
	// certificate of the block must already be stored.
	// Returns ErrAlreadyExists if a block is already indexed at number.
	IndexFinalized(number uint32, blockHash hash.Hash) error

	// ByNumber returns the certificate of the macro block finalized at number.
	// Returns ErrNotFound if no block is indexed at number.
	ByNumber(number uint32) (*pbft.Certificate, error)

	// Remove removes the certificate of the given block, if any, along with its
	// finalized number index.
	Remove(blockHash hash.Hash) error
}

// ViewChangeCertificates represents persistent storage for view change certificates.
type ViewChangeCertificates interface {

	// Store stores the certificate, keyed by block number and new view.
	// Returns ErrAlreadyExists if a certificate for the same view change is already stored.
	Store(cert *pbft.ViewChangeCertificate) error

	// ByView returns the certificate moving the macro block at blockNumber to newView.
	// Returns ErrNotFound if there is none.
	ByView(blockNumber uint32, newView uint32) (*pbft.ViewChangeCertificate, error)
}
