package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/finalitylabs/qcert/cmd/bootstrap/run"
	"github.com/finalitylabs/qcert/model/encoding/cbor"
	"github.com/finalitylabs/qcert/module/metrics"
	"github.com/finalitylabs/qcert/module/signature"
	bstorage "github.com/finalitylabs/qcert/storage/badger"
)

var qcCmd = &cobra.Command{
	Use:   "qc",
	Short: "Aggregate votes into a finality certificate for a block",
	Long: `Aggregate votes into a finality certificate for a block. By default every staking key
in the output directory signs both phases; with --from-votes the vote files written by the
vote command are aggregated instead.`,
	Run: qcRun,
}

func init() {
	rootCmd.AddCommand(qcCmd)

	qcCmd.Flags().String("block", "", "hex encoded hash of the block to certify")
	qcCmd.Flags().Bool("from-votes", false, "aggregate existing vote files instead of signing")
	qcCmd.Flags().String("datadir", "", "badger directory to store the certificate in (optional)")
	qcCmd.Flags().Uint32("number", 0, "macro block number to index the certificate at, requires --datadir")
}

func qcRun(_ *cobra.Command, _ []string) {
	blockHash := parseBlockHash(viper.GetString("block"))
	validators := readValidators()
	scheme := signature.NewPBFTScheme()

	var votes *run.Votes
	if viper.GetBool("from-votes") {
		votes = readVotes(validators.Size())
	} else {
		var err error
		votes, err = run.GenerateVotes(scheme, readSigners(validators.Size()), blockHash)
		if err != nil {
			log.Fatal().Err(err).Msg("could not generate votes")
		}
	}
	log.Info().Int("prepare", len(votes.Prepare)).Int("commit", len(votes.Commit)).Msg("collected votes")

	cert, err := run.GenerateCertificate(log, metrics.NewNoopCollector(), scheme, validators, blockHash, votes)
	if err != nil {
		log.Fatal().Err(err).Msg("could not generate certificate")
	}
	writeFile(filepath.Join(outdir(), FilenameCertificate), cbor.NewEncoder().MustEncode(cert))

	datadir := viper.GetString("datadir")
	if datadir == "" {
		return
	}
	db := openDB(datadir)
	defer db.Close()

	certificates := bstorage.NewCertificates(metrics.NewNoopCollector(), db)
	err = certificates.Store(cert)
	if err != nil {
		log.Fatal().Err(err).Msg("could not store certificate")
	}
	if viper.IsSet("number") {
		number := viper.GetUint32("number")
		err = certificates.IndexFinalized(number, cert.BlockHash)
		if err != nil {
			log.Fatal().Err(err).Uint32("number", number).Msg("could not index certificate")
		}
	}
	log.Info().Str("datadir", datadir).Msg("stored certificate")
}
