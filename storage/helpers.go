package storage

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fxamacker/cbor/v2"
)

// Artifact encoding/decoding
func encodeArtifact(a any) ([]byte, error) {
	encOpts := cbor.CoreDetEncOptions()
	em, err := encOpts.EncMode()
	if err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}
	return em.Marshal(a)
}

func decodeArtifact(data []byte, out any) error {
	return cbor.Unmarshal(data, out)
}

// contributionKey builds the composite key round x donor x project.
func contributionKey(roundID []byte, donor, project common.Address) []byte {
	key := make([]byte, 0, len(roundID)+2*common.AddressLength)
	key = append(key, roundID...)
	key = append(key, donor.Bytes()...)
	key = append(key, project.Bytes()...)
	return key
}

// projectKey builds the composite key round x project.
func projectKey(roundID []byte, project common.Address) []byte {
	key := make([]byte, 0, len(roundID)+common.AddressLength)
	key = append(key, roundID...)
	key = append(key, project.Bytes()...)
	return key
}

// donorKey builds the composite key round x donor.
func donorKey(roundID []byte, donor common.Address) []byte {
	return projectKey(roundID, donor)
}
