package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/finalitylabs/qcert/consensus/pbft"
	"github.com/finalitylabs/qcert/model/encoding/cbor"
	model "github.com/finalitylabs/qcert/model/pbft"
	"github.com/finalitylabs/qcert/module/signature"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a finality certificate against the validator set",
	Run:   verifyRun,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().String("certificate", "", "certificate file (default <outdir>/certificate.cbor)")
	verifyCmd.Flags().Uint16("threshold", 0, "weight the signers must exceed (default: the set's quorum threshold)")
}

func verifyRun(_ *cobra.Command, _ []string) {
	path := viper.GetString("certificate")
	if path == "" {
		path = filepath.Join(outdir(), FilenameCertificate)
	}
	validators := readValidators()
	threshold := uint16(viper.GetUint("threshold"))
	if threshold == 0 {
		threshold = validators.QuorumThreshold()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("could not read certificate")
	}
	var cert model.Certificate
	err = cbor.NewEncoder().Decode(data, &cert)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("could not decode certificate")
	}

	err = pbft.VerifyCertificate(signature.NewPBFTScheme(), validators, &cert, threshold)
	if err != nil {
		log.Fatal().Err(err).Str("block_hash", cert.BlockHash.String()).Msg("certificate is invalid")
	}
	log.Info().
		Str("block_hash", cert.BlockHash.String()).
		Uint16("threshold", threshold).
		Msg("certificate is valid")
}
