package cmd

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgraph-io/badger/v2"
	"github.com/hashicorp/go-multierror"
	"github.com/onflow/flow-go/crypto"

	"github.com/finalitylabs/qcert/cmd/bootstrap/run"
	"github.com/finalitylabs/qcert/model/encoding/cbor"
	"github.com/finalitylabs/qcert/model/hash"
	model "github.com/finalitylabs/qcert/model/pbft"
	"github.com/finalitylabs/qcert/model/validator"
	"github.com/finalitylabs/qcert/module/metrics"
	"github.com/finalitylabs/qcert/module/signature"
)

func generateRandomSeeds(n int) [][]byte {
	seeds := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		seeds = append(seeds, generateRandomSeed())
	}
	return seeds
}

func generateRandomSeed() []byte {
	seed := make([]byte, randomSeedBytes)
	if n, err := rand.Read(seed); err != nil || n != randomSeedBytes {
		log.Fatal().Err(err).Msg("cannot generate random seeds")
	}
	return seed
}

func parseBlockHash(s string) hash.Hash {
	blockHash, err := hash.FromHex(s)
	if err != nil {
		log.Fatal().Err(err).Str("block", s).Msg("invalid block hash")
	}
	return blockHash
}

func writeFile(path string, data []byte) {
	err := os.MkdirAll(filepath.Dir(path), 0755)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create output dir")
	}

	err = os.WriteFile(path, data, 0644)
	if err != nil {
		log.Fatal().Err(err).Msg("could not write file")
	}

	log.Info().Msgf("wrote file %v", path)
}

func stakingKeyPath(index uint16) string {
	return filepath.Join(outdir(), DirnameKeys, fmt.Sprintf(FilenameStakingKey, index))
}

func writeStakingKey(index uint16, key crypto.PrivateKey) {
	writeFile(stakingKeyPath(index), []byte(hex.EncodeToString(key.Encode())))
}

func loadStakingKey(index uint16) (crypto.PrivateKey, error) {
	data, err := os.ReadFile(stakingKeyPath(index))
	if err != nil {
		return nil, fmt.Errorf("could not read staking key %d: %w", index, err)
	}
	raw, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("staking key %d is not hex: %w", index, err)
	}
	key, err := crypto.DecodePrivateKey(crypto.BLSBLS12381, raw)
	if err != nil {
		return nil, fmt.Errorf("could not decode staking key %d: %w", index, err)
	}
	return key, nil
}

func readStakingKey(index uint16) crypto.PrivateKey {
	key, err := loadStakingKey(index)
	if err != nil {
		log.Fatal().Err(err).Msg("could not load staking key")
	}
	return key
}

// readSigners loads the staking keys present in the output directory. Missing keys are
// skipped since other operators may hold them; unreadable keys are fatal.
func readSigners(size int) []run.Signer {
	var errs *multierror.Error
	signers := make([]run.Signer, 0, size)
	for i := 0; i < size; i++ {
		index := uint16(i)
		key, err := loadStakingKey(index)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		signers = append(signers, run.Signer{Index: index, StakingKey: key})
	}
	if err := errs.ErrorOrNil(); err != nil {
		log.Fatal().Err(err).Msg("could not load staking keys")
	}
	return signers
}

// readVotes loads the vote files of all slots. Missing files are skipped.
func readVotes(size int) *run.Votes {
	var errs *multierror.Error
	encoder := cbor.NewEncoder()
	votes := &run.Votes{}
	for i := 0; i < size; i++ {
		index := uint16(i)

		var prepare signature.SignedMessage[model.PrepareMessage]
		err := readCBOR(encoder, votePath(index, metrics.PhasePrepare), &prepare)
		if err == nil {
			votes.Prepare = append(votes.Prepare, &prepare)
		} else if !errors.Is(err, fs.ErrNotExist) {
			errs = multierror.Append(errs, err)
		}

		var commit signature.SignedMessage[model.CommitMessage]
		err = readCBOR(encoder, votePath(index, metrics.PhaseCommit), &commit)
		if err == nil {
			votes.Commit = append(votes.Commit, &commit)
		} else if !errors.Is(err, fs.ErrNotExist) {
			errs = multierror.Append(errs, err)
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		log.Fatal().Err(err).Msg("could not load votes")
	}
	return votes
}

func readCBOR(encoder *cbor.Encoder, path string, target interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read %s: %w", path, err)
	}
	err = encoder.Decode(data, target)
	if err != nil {
		return fmt.Errorf("could not decode %s: %w", path, err)
	}
	return nil
}

func writeValidators(set *validator.Set) {
	path := filepath.Join(outdir(), FilenameValidators)
	err := os.MkdirAll(filepath.Dir(path), 0755)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create output dir")
	}
	f, err := os.Create(path)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create validator set file")
	}
	defer f.Close()

	err = set.WriteYAML(f)
	if err != nil {
		log.Fatal().Err(err).Msg("could not write validator set")
	}
	log.Info().Msgf("wrote file %v", path)
}

func readValidators() *validator.Set {
	path := filepath.Join(outdir(), FilenameValidators)
	set, err := validator.LoadYAML(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("could not load validator set")
	}
	return set
}

func openDB(dir string) *badger.DB {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		log.Fatal().Err(err).Str("dir", dir).Msg("could not open database")
	}
	return db
}
