package types

import "github.com/fxamacker/cbor/v2"

func cborMarshalBytes(b []byte) ([]byte, error) {
	return cbor.Marshal(b)
}

func cborUnmarshalBytes(data []byte) ([]byte, error) {
	var b []byte
	if err := cbor.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	return b, nil
}
