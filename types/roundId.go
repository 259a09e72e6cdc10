package types

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// RoundID is the type to identify a funding round. It is composed of:
// - ChainID (4 bytes)
// - Address of the round organizer (20 bytes)
// - Nonce (8 bytes)
type RoundID struct {
	Address common.Address
	Nonce   uint64
	ChainID uint32
}

// Marshal encodes RoundID to bytes.
func (r *RoundID) Marshal() []byte {
	chainID := make([]byte, 4)
	binary.BigEndian.PutUint32(chainID, r.ChainID)

	nonce := make([]byte, 8)
	binary.BigEndian.PutUint64(nonce, r.Nonce)

	var id bytes.Buffer
	id.Write(chainID[:4])
	id.Write(r.Address.Bytes()[:20])
	id.Write(nonce[:8])
	return id.Bytes()
}

// Unmarshal decodes bytes to RoundID.
func (r *RoundID) Unmarshal(data []byte) error {
	if len(data) != 32 {
		return fmt.Errorf("invalid RoundID length: %d", len(data))
	}
	r.ChainID = binary.BigEndian.Uint32(data[:4])
	r.Address = common.BytesToAddress(data[4:24])
	r.Nonce = binary.BigEndian.Uint64(data[24:32])
	return nil
}

// SetBytes decodes bytes to RoundID and returns the receiver. It panics on
// malformed input, so it should only be used with trusted data.
func (r *RoundID) SetBytes(data []byte) *RoundID {
	if err := r.Unmarshal(data); err != nil {
		panic(err)
	}
	return r
}

// MarshalBinary implements the BinaryMarshaler interface.
func (r *RoundID) MarshalBinary() (data []byte, err error) {
	return r.Marshal(), nil
}

// UnmarshalBinary implements the BinaryUnmarshaler interface.
func (r *RoundID) UnmarshalBinary(data []byte) error {
	return r.Unmarshal(data)
}

// String returns a human readable representation of the round ID.
func (r *RoundID) String() string {
	return hex.EncodeToString(r.Marshal())
}
