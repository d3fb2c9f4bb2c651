package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/finalitylabs/qcert/cmd/bootstrap/run"
	"github.com/finalitylabs/qcert/model/validator"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate staking keys and the validator set file",
	Run:   keygenRun,
}

func init() {
	rootCmd.AddCommand(keygenCmd)

	keygenCmd.Flags().Uint16("count", 4, "number of validators")
	keygenCmd.Flags().IntSlice("weights", nil, "voting weight per validator in slot order (default 1 each)")
}

func keygenRun(_ *cobra.Command, _ []string) {
	count := int(viper.GetUint("count"))
	weights := viper.GetIntSlice("weights")
	if count == 0 {
		log.Fatal().Msg("need at least one validator")
	}
	if len(weights) > count {
		log.Fatal().Int("weights", len(weights)).Int("count", count).Msg("more weights than validators")
	}

	keys, err := run.GenerateStakingKeys(count, generateRandomSeeds(count))
	if err != nil {
		log.Fatal().Err(err).Msg("could not generate staking keys")
	}

	validators := make([]validator.Validator, 0, count)
	for i, key := range keys {
		weight := uint16(1)
		if i < len(weights) {
			if weights[i] <= 0 || weights[i] > int(^uint16(0)) {
				log.Fatal().Int("index", i).Int("weight", weights[i]).Msg("weight out of range")
			}
			weight = uint16(weights[i])
		}
		validators = append(validators, validator.Validator{
			Index:     uint16(i),
			PublicKey: key.PublicKey(),
			Weight:    weight,
		})
		writeStakingKey(uint16(i), key)
	}

	set, err := validator.NewSet(validators)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid validator set")
	}
	writeValidators(set)

	log.Info().
		Int("validators", set.Size()).
		Uint64("total_weight", set.TotalWeight()).
		Uint16("threshold", set.QuorumThreshold()).
		Msg("generated validator set")
}
