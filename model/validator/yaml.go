package validator

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/onflow/flow-go/crypto"
	"gopkg.in/yaml.v3"
)

type encodableValidator struct {
	Index     uint16 `yaml:"index"`
	PublicKey string `yaml:"public_key"`
	Weight    uint16 `yaml:"weight"`
}

type encodableSet struct {
	Validators []encodableValidator `yaml:"validators"`
}

// LoadYAML reads a validator set file.
func LoadYAML(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read validator set: %w", err)
	}
	return DecodeYAML(data)
}

// DecodeYAML parses a YAML validator set with hex encoded BLS public keys.
func DecodeYAML(data []byte) (*Set, error) {
	var enc encodableSet
	if err := yaml.Unmarshal(data, &enc); err != nil {
		return nil, fmt.Errorf("could not parse validator set: %w", err)
	}

	validators := make([]Validator, 0, len(enc.Validators))
	for _, v := range enc.Validators {
		raw, err := hex.DecodeString(v.PublicKey)
		if err != nil {
			return nil, fmt.Errorf("validator %d: invalid public key hex: %w", v.Index, err)
		}
		pk, err := crypto.DecodePublicKey(crypto.BLSBLS12381, raw)
		if err != nil {
			return nil, fmt.Errorf("validator %d: invalid public key: %w", v.Index, err)
		}
		validators = append(validators, Validator{Index: v.Index, PublicKey: pk, Weight: v.Weight})
	}
	return NewSet(validators)
}

// WriteYAML writes the set in the format read by DecodeYAML.
func (s *Set) WriteYAML(w io.Writer) error {
	enc := encodableSet{Validators: make([]encodableValidator, 0, len(s.validators))}
	for _, v := range s.validators {
		enc.Validators = append(enc.Validators, encodableValidator{
			Index:     v.Index,
			PublicKey: hex.EncodeToString(v.PublicKey.Encode()),
			Weight:    v.Weight,
		})
	}
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(enc); err != nil {
		return fmt.Errorf("could not encode validator set: %w", err)
	}
	return encoder.Close()
}
