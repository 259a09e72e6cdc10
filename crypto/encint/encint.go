// Package encint defines the opaque encrypted-integer capability the funding
// engine operates on. Amounts are handles to encrypted 32-bit integers; the
// only way to combine or compare them is through a Scheme, and no code path
// outside a Scheme implementation ever observes a plaintext value.
//
// Comparisons yield encrypted booleans (an Amount holding 0 or 1) that are
// only consumed by Select, so the engine never branches on a decrypted
// value.
package encint

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
)

// MaxValue is the maximum representable plaintext value of an encrypted
// integer. The logical domain is 32 bits; safe arithmetic clamps to this
// value on overflow.
const MaxValue = uint64(1<<32 - 1)

var (
	// ErrZeroDivisor is returned when a plaintext divisor of zero is used.
	// It is fatal: the caller must not retry the same call.
	ErrZeroDivisor = errors.New("plaintext divisor is zero")
	// ErrInvalidBps is returned when a basis-point value exceeds 10000.
	ErrInvalidBps = errors.New("basis points exceed 10000")
	// ErrMalformedAmount is returned when an encrypted handle cannot be
	// interpreted by the scheme.
	ErrMalformedAmount = errors.New("malformed encrypted amount")
)

// Amount is an opaque handle to an encrypted integer. Its byte content is
// scheme-specific and must never be interpreted outside the scheme.
type Amount []byte

// String returns the hexadecimal representation of the handle.
func (a Amount) String() string {
	return hex.EncodeToString(a)
}

// MarshalJSON implements the json.Marshaler interface.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(a))
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return err
	}
	*a = b
	return nil
}

// Scheme is the cryptographic capability the engine calls for every numeric
// operation. Implementations must be total over their encrypted domain: any
// operand combination yields a valid handle or an error, never a plaintext.
type Scheme interface {
	// Name returns the scheme type identifier.
	Name() string
	// Encrypt produces a fresh handle for the given plaintext value. It is
	// the entry point used by donors (or tests) to produce ciphertexts; the
	// engine itself only encrypts public constants through Const.
	Encrypt(value uint64) (Amount, error)
	// Const produces a handle for a public plaintext constant.
	Const(value uint64) (Amount, error)
	// Add returns a handle for a+b. No overflow handling is applied here;
	// use SafeAdd for clamped addition.
	Add(a, b Amount) (Amount, error)
	// Sub returns a handle for a-b. The result for b > a is scheme-defined
	// garbage that callers must discard through Select; use SafeSub for
	// clamped subtraction.
	Sub(a, b Amount) (Amount, error)
	// Mul returns a handle for a*b. Overflow is not detected.
	Mul(a, b Amount) (Amount, error)
	// DivScalar returns a handle for a/k with a plaintext divisor k > 0.
	// Division by an encrypted divisor is unsupported by design.
	DivScalar(a Amount, k uint64) (Amount, error)
	// Le returns an encrypted boolean handle for a <= b.
	Le(a, b Amount) (Amount, error)
	// Eq returns an encrypted boolean handle for a == b.
	Eq(a, b Amount) (Amount, error)
	// Select returns a handle equal to a if cond holds, b otherwise. cond
	// must be an encrypted boolean produced by Le or Eq.
	Select(cond, a, b Amount) (Amount, error)
}

// Revealer is the controlled decryption capability. It is deliberately not
// part of Scheme: the funding engine never reveals values itself, only the
// external decryption oracle does.
type Revealer interface {
	Reveal(a Amount) (uint64, error)
}
