package storage

import (
	"fmt"
	"math/big"

	"github.com/vocdoni/qf-z-sandbox/crypto/ecc"
	"github.com/vocdoni/qf-z-sandbox/types"
)

// EncryptionKeys holds the ElGamal key pair of a round. The private key is
// never serialized to JSON; it only exists for deployments where the engine
// process also hosts the decryption oracle.
type EncryptionKeys struct {
	X          *big.Int `json:"publicKeyX" cbor:"0,keyasint,omitempty"`
	Y          *big.Int `json:"publicKeyY" cbor:"1,keyasint,omitempty"`
	PrivateKey *big.Int `json:"-"          cbor:"2,keyasint,omitempty"`
}

// SetEncryptionKeys stores the encryption keys for a round.
func (s *Storage) SetEncryptionKeys(rid *types.RoundID, publicKey ecc.Point, privateKey *big.Int) error {
	x, y := publicKey.Point()
	eks := &EncryptionKeys{
		X:          x,
		Y:          y,
		PrivateKey: privateKey,
	}
	return s.setArtifact(encryptionKeyPrefix, rid.Marshal(), eks)
}

// EncryptionKeys loads the encryption keys for a round. The public key is
// returned as raw coordinates; the caller reconstructs the point on its
// configured curve. It returns ErrNotFound if the keys do not exist.
func (s *Storage) EncryptionKeys(rid *types.RoundID) (*EncryptionKeys, error) {
	eks := &EncryptionKeys{}
	if err := s.getArtifact(encryptionKeyPrefix, rid.Marshal(), eks); err != nil {
		if err == ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("could not read encryption keys: %w", err)
	}
	return eks, nil
}
