package operation

import (
	"github.com/dgraph-io/badger/v2"

	"github.com/finalitylabs/qcert/model/hash"
	"github.com/finalitylabs/qcert/model/pbft"
)

// InsertCertificate inserts a finality certificate by block hash.
// Returns storage.ErrAlreadyExists if a certificate has already been inserted for the block.
func InsertCertificate(cert *pbft.Certificate) func(*badger.Txn) error {
	return insert(makePrefix(codeCertificate, cert.BlockHash), cert)
}

// RetrieveCertificate retrieves a finality certificate by block hash.
// Returns storage.ErrNotFound if no certificate is stored for the block.
func RetrieveCertificate(blockHash hash.Hash, cert *pbft.Certificate) func(*badger.Txn) error {
	return retrieve(makePrefix(codeCertificate, blockHash), cert)
}

// CheckCertificate checks whether a certificate is stored for the block.
func CheckCertificate(blockHash hash.Hash, exists *bool) func(*badger.Txn) error {
	return check(makePrefix(codeCertificate, blockHash), exists)
}

// RemoveCertificate removes the certificate of the block.
// Returns storage.ErrNotFound if no certificate is stored for the block.
func RemoveCertificate(blockHash hash.Hash) func(*badger.Txn) error {
	return remove(makePrefix(codeCertificate, blockHash))
}

// IndexBlockNumber indexes the hash of the finalized macro block at the given number,
// together with the reverse entry from block hash to number.
// Returns storage.ErrAlreadyExists if either entry already exists.
func IndexBlockNumber(number uint32, blockHash hash.Hash) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		err := insert(makePrefix(codeBlockNumberToHash, number), blockHash)(tx)
		if err != nil {
			return err
		}
		return insert(makePrefix(codeBlockHashToNumber, blockHash), number)(tx)
	}
}

// LookupBlockNumber retrieves the hash of the finalized macro block at the given number.
func LookupBlockNumber(number uint32, blockHash *hash.Hash) func(*badger.Txn) error {
	return retrieve(makePrefix(codeBlockNumberToHash, number), blockHash)
}

// RemoveBlockNumber removes both index entries of the given block.
// Returns storage.ErrNotFound if the block is not indexed.
func RemoveBlockNumber(blockHash hash.Hash) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		var number uint32
		err := retrieve(makePrefix(codeBlockHashToNumber, blockHash), &number)(tx)
		if err != nil {
			return err
		}
		err = remove(makePrefix(codeBlockNumberToHash, number))(tx)
		if err != nil {
			return err
		}
		return remove(makePrefix(codeBlockHashToNumber, blockHash))(tx)
	}
}

// InsertViewChangeCertificate inserts a view change certificate by block number and view.
func InsertViewChangeCertificate(cert *pbft.ViewChangeCertificate) func(*badger.Txn) error {
	return insert(makePrefix(codeViewChangeCertificate, cert.ViewChange.BlockNumber, cert.ViewChange.NewView), cert)
}

// RetrieveViewChangeCertificate retrieves the view change certificate moving the given
// block number to newView.
func RetrieveViewChangeCertificate(blockNumber uint32, newView uint32, cert *pbft.ViewChangeCertificate) func(*badger.Txn) error {
	return retrieve(makePrefix(codeViewChangeCertificate, blockNumber, newView), cert)
}
