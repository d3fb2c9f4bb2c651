package badger_test

import (
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/finalitylabs/qcert/module/metrics"
	mockmodule "github.com/finalitylabs/qcert/module/mock"
	"github.com/finalitylabs/qcert/storage"
	bstorage "github.com/finalitylabs/qcert/storage/badger"
	"github.com/finalitylabs/qcert/utils/unittest"
)

func TestCertificatesStoreRetrieve(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		store := bstorage.NewCertificates(metrics.NewNoopCollector(), db)
		cert := unittest.CertificateFixture()

		exists, err := store.Exists(cert.BlockHash)
		require.NoError(t, err)
		assert.False(t, exists)

		require.NoError(t, store.Store(cert))
		err = store.Store(cert)
		assert.ErrorIs(t, err, storage.ErrAlreadyExists)

		actual, err := store.ByBlockHash(cert.BlockHash)
		require.NoError(t, err)
		assert.Equal(t, cert, actual)

		exists, err = store.Exists(cert.BlockHash)
		require.NoError(t, err)
		assert.True(t, exists)

		_, err = store.ByBlockHash(unittest.HashFixture())
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

// A fresh store has an empty cache, so the first read goes to the database.
func TestCertificatesReadThrough(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		cert := unittest.CertificateFixture()
		require.NoError(t, bstorage.NewCertificates(metrics.NewNoopCollector(), db).Store(cert))

		collector := mockmodule.NewCacheMetrics(t)
		collector.On("CacheEntries", metrics.ResourceCertificate, mock.Anything)
		collector.On("CacheMiss", metrics.ResourceCertificate).Once()
		collector.On("CacheHit", metrics.ResourceCertificate).Once()
		collector.On("CacheNotFound", metrics.ResourceCertificate).Once()
		store := bstorage.NewCertificates(collector, db)

		for i := 0; i < 2; i++ {
			actual, err := store.ByBlockHash(cert.BlockHash)
			require.NoError(t, err)
			assert.Equal(t, cert, actual)
		}
		_, err := store.ByBlockHash(unittest.HashFixture())
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestCertificatesFinalizedIndex(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		store := bstorage.NewCertificates(metrics.NewNoopCollector(), db)
		cert := unittest.CertificateFixture()

		err := store.IndexFinalized(3, cert.BlockHash)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		require.NoError(t, store.Store(cert))
		require.NoError(t, store.IndexFinalized(3, cert.BlockHash))

		actual, err := store.ByNumber(3)
		require.NoError(t, err)
		assert.Equal(t, cert, actual)

		other := unittest.CertificateFixture()
		require.NoError(t, store.Store(other))
		err = store.IndexFinalized(3, other.BlockHash)
		assert.ErrorIs(t, err, storage.ErrAlreadyExists)

		_, err = store.ByNumber(4)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestCertificatesRemove(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		store := bstorage.NewCertificates(metrics.NewNoopCollector(), db)
		cert := unittest.CertificateFixture()
		require.NoError(t, store.Store(cert))

		require.NoError(t, store.Remove(cert.BlockHash))
		exists, err := store.Exists(cert.BlockHash)
		require.NoError(t, err)
		assert.False(t, exists)

		_, err = store.ByBlockHash(cert.BlockHash)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		// removing twice is fine
		require.NoError(t, store.Remove(cert.BlockHash))
	})
}

func TestCertificatesRemoveFinalized(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		store := bstorage.NewCertificates(metrics.NewNoopCollector(), db)
		cert := unittest.CertificateFixture()
		require.NoError(t, store.Store(cert))
		require.NoError(t, store.IndexFinalized(7, cert.BlockHash))

		require.NoError(t, store.Remove(cert.BlockHash))
		_, err := store.ByNumber(7)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		// a replacement certificate can be finalized at the same number
		replacement := unittest.CertificateFixture()
		require.NoError(t, store.Store(replacement))
		require.NoError(t, store.IndexFinalized(7, replacement.BlockHash))
		actual, err := store.ByNumber(7)
		require.NoError(t, err)
		assert.Equal(t, replacement, actual)
	})
}

func TestViewChangeCertificates(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		store := bstorage.NewViewChangeCertificates(db)
		cert := unittest.ViewChangeCertificateFixture(5, 1)

		require.NoError(t, store.Store(cert))
		assert.ErrorIs(t, store.Store(cert), storage.ErrAlreadyExists)

		actual, err := store.ByView(5, 1)
		require.NoError(t, err)
		assert.Equal(t, cert, actual)

		_, err = store.ByView(5, 2)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}
