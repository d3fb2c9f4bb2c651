package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finalitylabs/qcert/module/metrics"
	bstorage "github.com/finalitylabs/qcert/storage/badger"
	"github.com/finalitylabs/qcert/utils/unittest"
)

func execute(t *testing.T, dir string, args ...string) {
	resetFlags(rootCmd)
	rootCmd.SetArgs(append(args, "--outdir", dir))
	require.NoError(t, rootCmd.Execute())
}

func TestBootstrapFromVotes(t *testing.T) {
	unittest.RunWithTempDir(t, func(dir string) {
		blockHash := unittest.HashFixture()

		execute(t, dir, "keygen", "--count", "4", "--weights", "1,1,2,1")
		validators := readValidators()
		require.Equal(t, 4, validators.Size())
		require.Equal(t, uint16(3), validators.QuorumThreshold())

		// slots 0, 1 and 2 hold weight 4 of 5
		for _, index := range []string{"0", "1", "2"} {
			execute(t, dir, "vote", "--index", index, "--block", blockHash.String(), "--phase", "both")
		}
		assert.FileExists(t, filepath.Join(dir, DirnameVotes, "2.commit.vote.cbor"))

		execute(t, dir, "qc", "--block", blockHash.String(), "--from-votes=true")
		assert.FileExists(t, filepath.Join(dir, FilenameCertificate))

		execute(t, dir, "verify", "--threshold", "0")
	})
}

func TestBootstrapStoresCertificate(t *testing.T) {
	unittest.RunWithTempDir(t, func(dir string) {
		blockHash := unittest.HashFixture()
		datadir := filepath.Join(dir, "data")

		execute(t, dir, "keygen", "--count", "4", "--weights", "1,1,1,1")
		// one key is held elsewhere, three of four still finalize
		require.NoError(t, os.Remove(stakingKeyPath(3)))

		execute(t, dir, "qc", "--block", blockHash.String(), "--from-votes=false", "--datadir", datadir, "--number", "9")

		db := unittest.BadgerDB(t, datadir)
		defer db.Close()
		cert, err := bstorage.NewCertificates(metrics.NewNoopCollector(), db).ByNumber(9)
		require.NoError(t, err)
		assert.Equal(t, blockHash, cert.BlockHash)
	})
}

// resetFlags restores flag defaults, since cobra keeps parsed values between executions.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if s, ok := f.Value.(pflag.SliceValue); ok {
			_ = s.Replace([]string{})
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
