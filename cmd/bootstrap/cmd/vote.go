package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/finalitylabs/qcert/model/encoding/cbor"
	model "github.com/finalitylabs/qcert/model/pbft"
	"github.com/finalitylabs/qcert/module/metrics"
	"github.com/finalitylabs/qcert/module/signature"
)

var voteCmd = &cobra.Command{
	Use:   "vote",
	Short: "Sign the prepare and commit votes of one validator for a block",
	Run:   voteRun,
}

func init() {
	rootCmd.AddCommand(voteCmd)

	voteCmd.Flags().Uint16("index", 0, "slot index of the voting validator")
	voteCmd.Flags().String("block", "", "hex encoded hash of the block to vote for")
	voteCmd.Flags().String("phase", "both", "phase to vote in: prepare, commit or both")
}

func voteRun(_ *cobra.Command, _ []string) {
	index := uint16(viper.GetUint("index"))
	blockHash := parseBlockHash(viper.GetString("block"))
	phase := viper.GetString("phase")

	signer := signature.NewLocalSigner(signature.NewPBFTScheme(), readStakingKey(index))
	encoder := cbor.NewEncoder()

	if phase == metrics.PhasePrepare || phase == "both" {
		vote, err := signature.NewSignedMessage(model.NewPrepareMessage(blockHash), index, signer)
		if err != nil {
			log.Fatal().Err(err).Msg("could not sign prepare vote")
		}
		writeFile(votePath(index, metrics.PhasePrepare), encoder.MustEncode(vote))
	}
	if phase == metrics.PhaseCommit || phase == "both" {
		vote, err := signature.NewSignedMessage(model.NewCommitMessage(blockHash), index, signer)
		if err != nil {
			log.Fatal().Err(err).Msg("could not sign commit vote")
		}
		writeFile(votePath(index, metrics.PhaseCommit), encoder.MustEncode(vote))
	}
	if phase != metrics.PhasePrepare && phase != metrics.PhaseCommit && phase != "both" {
		log.Fatal().Str("phase", phase).Msg("unknown phase")
	}
}

func votePath(index uint16, phase string) string {
	return filepath.Join(outdir(), DirnameVotes, fmt.Sprintf(FilenameVote, index, phase))
}
