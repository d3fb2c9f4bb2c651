package run

import (
	"fmt"

	"github.com/onflow/flow-go/crypto"
)

// GenerateStakingKeys generates one BLS staking key per seed.
func GenerateStakingKeys(n int, seeds [][]byte) ([]crypto.PrivateKey, error) {
	if n != len(seeds) {
		return nil, fmt.Errorf("n needs to match the number of seeds (%v != %v)", n, len(seeds))
	}

	keys := make([]crypto.PrivateKey, n)

	var err error
	for i, seed := range seeds {
		if keys[i], err = crypto.GeneratePrivateKey(crypto.BLSBLS12381, seed); err != nil {
			return nil, err
		}
	}

	return keys, nil
}
