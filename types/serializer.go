package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// HexBytes is a byte slice that marshals to and from a hexadecimal string in
// JSON. It is used for opaque identifiers and encrypted handles across the
// API and the storage layer.
type HexBytes []byte

// String returns the hexadecimal string representation of the bytes.
func (b HexBytes) String() string {
	return hex.EncodeToString(b)
}

// SetString decodes a hexadecimal string (with or without 0x prefix) into b.
func (b *HexBytes) SetString(s string) error {
	s = strings.TrimPrefix(s, "0x")
	data, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	*b = data
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (b HexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(b))
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (b *HexBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return b.SetString(s)
}

// BigInt wraps big.Int to provide string-based JSON marshaling and
// byte-based CBOR marshaling.
type BigInt big.Int

// MathBigInt returns the underlying *big.Int.
func (i *BigInt) MathBigInt() *big.Int {
	return (*big.Int)(i)
}

// String returns the decimal representation of the integer.
func (i *BigInt) String() string {
	return i.MathBigInt().String()
}

// MarshalJSON implements the json.Marshaler interface.
func (i *BigInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.MathBigInt().String())
}

// UnmarshalJSON implements the json.Unmarshaler interface. It accepts both
// a JSON string and a bare JSON number.
func (i *BigInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	z, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return fmt.Errorf("invalid big integer: %q", s)
	}
	*i = BigInt(*z)
	return nil
}

// MarshalCBOR implements the cbor.Marshaler interface, encoding the integer
// as its big-endian byte representation.
func (i *BigInt) MarshalCBOR() ([]byte, error) {
	return cborMarshalBytes(i.MathBigInt().Bytes())
}

// UnmarshalCBOR implements the cbor.Unmarshaler interface.
func (i *BigInt) UnmarshalCBOR(data []byte) error {
	b, err := cborUnmarshalBytes(data)
	if err != nil {
		return err
	}
	*i = BigInt(*new(big.Int).SetBytes(b))
	return nil
}
