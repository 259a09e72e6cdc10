// Package cleartext implements the encint.Scheme interface with plaintext
// arithmetic. It exists for tests and local development: handles are just
// encoded integers, but callers still go through the same capability surface
// as with a real scheme, so engine code cannot tell the difference.
package cleartext

import (
	"encoding/binary"
	"fmt"

	"github.com/vocdoni/qf-z-sandbox/crypto/encint"
)

const SchemeType = "cleartext"

// handleSize is the byte length of a cleartext handle (big-endian uint64).
const handleSize = 8

// Scheme is a stateless plaintext stand-in for an encrypted-integer
// capability.
type Scheme struct{}

// New returns a new cleartext scheme.
func New() *Scheme {
	return &Scheme{}
}

func (s *Scheme) Name() string { return SchemeType }

func encode(v uint64) encint.Amount {
	b := make([]byte, handleSize)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func decode(a encint.Amount) (uint64, error) {
	if len(a) != handleSize {
		return 0, fmt.Errorf("%w: expected %d bytes, got %d",
			encint.ErrMalformedAmount, handleSize, len(a))
	}
	return binary.BigEndian.Uint64(a), nil
}

// Encrypt implements encint.Scheme.
func (s *Scheme) Encrypt(value uint64) (encint.Amount, error) {
	return encode(value), nil
}

// Const implements encint.Scheme.
func (s *Scheme) Const(value uint64) (encint.Amount, error) {
	return encode(value), nil
}

// Add implements encint.Scheme.
func (s *Scheme) Add(a, b encint.Amount) (encint.Amount, error) {
	va, err := decode(a)
	if err != nil {
		return nil, err
	}
	vb, err := decode(b)
	if err != nil {
		return nil, err
	}
	return encode(va + vb), nil
}

// Sub implements encint.Scheme. Underflow wraps around; callers discard
// wrapped results through Select.
func (s *Scheme) Sub(a, b encint.Amount) (encint.Amount, error) {
	va, err := decode(a)
	if err != nil {
		return nil, err
	}
	vb, err := decode(b)
	if err != nil {
		return nil, err
	}
	return encode(va - vb), nil
}

// Mul implements encint.Scheme.
func (s *Scheme) Mul(a, b encint.Amount) (encint.Amount, error) {
	va, err := decode(a)
	if err != nil {
		return nil, err
	}
	vb, err := decode(b)
	if err != nil {
		return nil, err
	}
	return encode(va * vb), nil
}

// DivScalar implements encint.Scheme.
func (s *Scheme) DivScalar(a encint.Amount, k uint64) (encint.Amount, error) {
	if k == 0 {
		return nil, encint.ErrZeroDivisor
	}
	va, err := decode(a)
	if err != nil {
		return nil, err
	}
	return encode(va / k), nil
}

// Le implements encint.Scheme.
func (s *Scheme) Le(a, b encint.Amount) (encint.Amount, error) {
	va, err := decode(a)
	if err != nil {
		return nil, err
	}
	vb, err := decode(b)
	if err != nil {
		return nil, err
	}
	if va <= vb {
		return encode(1), nil
	}
	return encode(0), nil
}

// Eq implements encint.Scheme.
func (s *Scheme) Eq(a, b encint.Amount) (encint.Amount, error) {
	va, err := decode(a)
	if err != nil {
		return nil, err
	}
	vb, err := decode(b)
	if err != nil {
		return nil, err
	}
	if va == vb {
		return encode(1), nil
	}
	return encode(0), nil
}

// Select implements encint.Scheme.
func (s *Scheme) Select(cond, a, b encint.Amount) (encint.Amount, error) {
	vc, err := decode(cond)
	if err != nil {
		return nil, err
	}
	if vc != 0 {
		return append(encint.Amount{}, a...), nil
	}
	return append(encint.Amount{}, b...), nil
}

// Reveal implements encint.Revealer.
func (s *Scheme) Reveal(a encint.Amount) (uint64, error) {
	return decode(a)
}
