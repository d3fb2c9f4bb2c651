package packer

import (
	"fmt"

	"github.com/finalitylabs/qcert/model/validator"
)

// FilterByIndices returns the validators at the given slots, in the given order.
func FilterByIndices(validators validator.Lookup, indices []uint16) ([]*validator.Validator, error) {
	list := make([]*validator.Validator, 0, len(indices))
	for _, index := range indices {
		v, ok := validators.ByIndex(index)
		if !ok {
			return nil, fmt.Errorf("signer index %v is out of range %v", index, validators.Size()-1)
		}
		list = append(list, v)
	}
	return list, nil
}
