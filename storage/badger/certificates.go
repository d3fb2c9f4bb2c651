package badger

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v2"

	"github.com/finalitylabs/qcert/model/hash"
	"github.com/finalitylabs/qcert/model/pbft"
	"github.com/finalitylabs/qcert/module"
	"github.com/finalitylabs/qcert/module/metrics"
	"github.com/finalitylabs/qcert/storage"
	"github.com/finalitylabs/qcert/storage/badger/operation"
)

// Certificates implements persistent storage for finality certificates.
type Certificates struct {
	db    *badger.DB
	cache *Cache[hash.Hash, *pbft.Certificate]
}

var _ storage.Certificates = (*Certificates)(nil)

func NewCertificates(collector module.CacheMetrics, db *badger.DB) *Certificates {

	store := func(_ hash.Hash, cert *pbft.Certificate) func(*badger.Txn) error {
		return operation.InsertCertificate(cert)
	}

	retrieve := func(blockHash hash.Hash) func(*badger.Txn) (*pbft.Certificate, error) {
		return func(tx *badger.Txn) (*pbft.Certificate, error) {
			var cert pbft.Certificate
			err := operation.RetrieveCertificate(blockHash, &cert)(tx)
			return &cert, err
		}
	}

	return &Certificates{
		db: db,
		cache: newCache(collector, metrics.ResourceCertificate,
			withLimit[hash.Hash, *pbft.Certificate](100),
			withStore(store),
			withRetrieve(retrieve),
		),
	}
}

func (c *Certificates) Store(cert *pbft.Certificate) error {
	return c.cache.Put(c.db, cert.BlockHash, cert)
}

func (c *Certificates) ByBlockHash(blockHash hash.Hash) (*pbft.Certificate, error) {
	tx := c.db.NewTransaction(false)
	defer tx.Discard()
	return c.cache.Get(blockHash)(tx)
}

func (c *Certificates) Exists(blockHash hash.Hash) (bool, error) {
	if c.cache.IsCached(blockHash) {
		return true, nil
	}
	var exists bool
	err := c.db.View(operation.CheckCertificate(blockHash, &exists))
	if err != nil {
		return false, fmt.Errorf("could not check certificate: %w", err)
	}
	return exists, nil
}

func (c *Certificates) IndexFinalized(number uint32, blockHash hash.Hash) error {
	return c.db.Update(func(tx *badger.Txn) error {
		var exists bool
		err := operation.CheckCertificate(blockHash, &exists)(tx)
		if err != nil {
			return fmt.Errorf("could not check certificate: %w", err)
		}
		if !exists {
			return fmt.Errorf("no certificate for block %v: %w", blockHash, storage.ErrNotFound)
		}
		return operation.IndexBlockNumber(number, blockHash)(tx)
	})
}

func (c *Certificates) ByNumber(number uint32) (*pbft.Certificate, error) {
	tx := c.db.NewTransaction(false)
	defer tx.Discard()

	var blockHash hash.Hash
	err := operation.LookupBlockNumber(number, &blockHash)(tx)
	if err != nil {
		return nil, fmt.Errorf("could not look up block number %d: %w", number, err)
	}
	return c.cache.Get(blockHash)(tx)
}

func (c *Certificates) Remove(blockHash hash.Hash) error {
	err := c.db.Update(func(tx *badger.Txn) error {
		err := operation.SkipNonExist(operation.RemoveCertificate(blockHash))(tx)
		if err != nil {
			return err
		}
		return operation.SkipNonExist(operation.RemoveBlockNumber(blockHash))(tx)
	})
	if err != nil {
		return fmt.Errorf("could not remove certificate: %w", err)
	}
	c.cache.Remove(blockHash)
	return nil
}

// ViewChangeCertificates implements persistent storage for view change certificates.
type ViewChangeCertificates struct {
	db *badger.DB
}

var _ storage.ViewChangeCertificates = (*ViewChangeCertificates)(nil)

func NewViewChangeCertificates(db *badger.DB) *ViewChangeCertificates {
	return &ViewChangeCertificates{db: db}
}

func (v *ViewChangeCertificates) Store(cert *pbft.ViewChangeCertificate) error {
	return v.db.Update(operation.InsertViewChangeCertificate(cert))
}

func (v *ViewChangeCertificates) ByView(blockNumber uint32, newView uint32) (*pbft.ViewChangeCertificate, error) {
	var cert pbft.ViewChangeCertificate
	err := v.db.View(operation.RetrieveViewChangeCertificate(blockNumber, newView, &cert))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("could not retrieve view change certificate: %w", err)
	}
	return &cert, nil
}
