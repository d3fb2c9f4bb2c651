package unittest

import (
	"crypto/rand"

	"github.com/onflow/flow-go/crypto"
)

// StakingKey generates a random BLS private key.
func StakingKey() (crypto.PrivateKey, error) {
	seed := make([]byte, crypto.KeyGenSeedMinLen)
	n, err := rand.Read(seed)
	if err != nil || n != crypto.KeyGenSeedMinLen {
		return nil, err
	}

	sk, err := crypto.GeneratePrivateKey(crypto.BLSBLS12381, seed)
	return sk, err
}

// StakingKeys generates n random BLS private keys and panics on failure.
func StakingKeys(n int) []crypto.PrivateKey {
	keys := make([]crypto.PrivateKey, 0, n)

	for i := 0; i < n; i++ {
		key, err := StakingKey()
		if err != nil {
			panic(err)
		}
		keys = append(keys, key)
	}

	return keys
}
