package elgamal

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/vocdoni/qf-z-sandbox/crypto/ecc"
	"github.com/vocdoni/qf-z-sandbox/crypto/encint"
)

const SchemeType = "elgamal"

// maxDecryptRange bounds the discrete-log search of the executor. It leaves
// one bit of headroom above the 32-bit logical domain for unclamped sums.
const maxDecryptRange = uint64(1) << 33

// Scheme implements encint.Scheme over ElGamal ciphertexts. Handles are the
// concatenation of the two serialized curve points of a ciphertext.
//
// The key-holder executor keeps a plaintext ledger of the ciphertexts it has
// produced itself, so results of non-additive operations can be reused as
// operands without repeating the discrete-log search. That ledger never
// leaves the scheme.
type Scheme struct {
	curve ecc.Point
	pub   ecc.Point
	priv  *big.Int

	mu    sync.Mutex
	known map[string]uint64
}

// New creates a scheme from an existing key pair. The private key may be nil
// for an encrypt-and-add-only instance (e.g. a donor-side client); the
// non-additive primitives then fail.
func New(curve ecc.Point, pub ecc.Point, priv *big.Int) *Scheme {
	return &Scheme{
		curve: curve,
		pub:   pub,
		priv:  priv,
		known: make(map[string]uint64),
	}
}

// Generate creates a scheme with a fresh key pair on the given curve.
func Generate(curve ecc.Point) (*Scheme, error) {
	pub, priv, err := GenerateKey(curve)
	if err != nil {
		return nil, err
	}
	return New(curve, pub, priv), nil
}

func (s *Scheme) Name() string { return SchemeType }

// PublicKey returns the encryption public key of the scheme.
func (s *Scheme) PublicKey() ecc.Point { return s.pub }

func (s *Scheme) serialize(c1, c2 ecc.Point) encint.Amount {
	b1 := c1.Marshal()
	b2 := c2.Marshal()
	out := make([]byte, 0, len(b1)+len(b2))
	out = append(out, b1...)
	out = append(out, b2...)
	return out
}

func (s *Scheme) deserialize(a encint.Amount) (ecc.Point, ecc.Point, error) {
	if len(a) == 0 || len(a)%2 != 0 {
		return nil, nil, fmt.Errorf("%w: odd handle length %d", encint.ErrMalformedAmount, len(a))
	}
	half := len(a) / 2
	c1 := s.curve.New()
	if err := c1.Unmarshal(a[:half]); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", encint.ErrMalformedAmount, err)
	}
	c2 := s.curve.New()
	if err := c2.Unmarshal(a[half:]); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", encint.ErrMalformedAmount, err)
	}
	return c1, c2, nil
}

// remember records the plaintext of a ciphertext produced by the executor.
func (s *Scheme) remember(a encint.Amount, v uint64) {
	s.mu.Lock()
	s.known[string(a)] = v
	s.mu.Unlock()
}

func (s *Scheme) recall(a encint.Amount) (uint64, bool) {
	s.mu.Lock()
	v, ok := s.known[string(a)]
	s.mu.Unlock()
	return v, ok
}

func (s *Scheme) encrypt(value uint64) (encint.Amount, error) {
	k, err := RandK()
	if err != nil {
		return nil, err
	}
	c1, c2, err := EncryptWithK(s.pub, new(big.Int).SetUint64(value), k)
	if err != nil {
		return nil, err
	}
	out := s.serialize(c1, c2)
	s.remember(out, value)
	return out, nil
}

// decrypt recovers the plaintext of a handle inside the executor, using the
// plaintext ledger when possible and the baby-step giant-step search
// otherwise.
func (s *Scheme) decrypt(a encint.Amount) (uint64, error) {
	if v, ok := s.recall(a); ok {
		return v, nil
	}
	if s.priv == nil {
		return 0, fmt.Errorf("scheme holds no private key")
	}
	c1, c2, err := s.deserialize(a)
	if err != nil {
		return 0, err
	}
	m := DecryptPoint(s.priv, c1, c2)
	g := s.curve.New()
	g.SetGenerator()
	x, err := BabyStepGiantStep(m, g, maxDecryptRange)
	if err != nil {
		return 0, err
	}
	v := x.Uint64()
	s.remember(a, v)
	return v, nil
}

// Encrypt implements encint.Scheme.
func (s *Scheme) Encrypt(value uint64) (encint.Amount, error) {
	return s.encrypt(value)
}

// Const implements encint.Scheme.
func (s *Scheme) Const(value uint64) (encint.Amount, error) {
	return s.encrypt(value)
}

// Add implements encint.Scheme as a pure homomorphic point addition.
func (s *Scheme) Add(a, b encint.Amount) (encint.Amount, error) {
	a1, a2, err := s.deserialize(a)
	if err != nil {
		return nil, err
	}
	b1, b2, err := s.deserialize(b)
	if err != nil {
		return nil, err
	}
	c1 := s.curve.New()
	c1.Add(a1, b1)
	c2 := s.curve.New()
	c2.Add(a2, b2)
	out := s.serialize(c1, c2)
	// propagate the plaintext ledger when both operands are known
	if va, ok := s.recall(a); ok {
		if vb, ok := s.recall(b); ok {
			s.remember(out, va+vb)
		}
	}
	return out, nil
}

// Sub implements encint.Scheme as a homomorphic addition of the negated
// ciphertext. For b > a the result encodes a negative scalar; callers must
// discard it through Select.
func (s *Scheme) Sub(a, b encint.Amount) (encint.Amount, error) {
	a1, a2, err := s.deserialize(a)
	if err != nil {
		return nil, err
	}
	b1, b2, err := s.deserialize(b)
	if err != nil {
		return nil, err
	}
	n1 := s.curve.New()
	n1.Neg(b1)
	n2 := s.curve.New()
	n2.Neg(b2)
	c1 := s.curve.New()
	c1.Add(a1, n1)
	c2 := s.curve.New()
	c2.Add(a2, n2)
	out := s.serialize(c1, c2)
	if va, ok := s.recall(a); ok {
		if vb, ok := s.recall(b); ok && vb <= va {
			s.remember(out, va-vb)
		}
	}
	return out, nil
}

// Mul implements encint.Scheme through the key-holder executor.
func (s *Scheme) Mul(a, b encint.Amount) (encint.Amount, error) {
	va, err := s.decrypt(a)
	if err != nil {
		return nil, err
	}
	vb, err := s.decrypt(b)
	if err != nil {
		return nil, err
	}
	return s.encrypt(va * vb)
}

// DivScalar implements encint.Scheme through the key-holder executor.
func (s *Scheme) DivScalar(a encint.Amount, k uint64) (encint.Amount, error) {
	if k == 0 {
		return nil, encint.ErrZeroDivisor
	}
	va, err := s.decrypt(a)
	if err != nil {
		return nil, err
	}
	return s.encrypt(va / k)
}

// Le implements encint.Scheme through the key-holder executor.
func (s *Scheme) Le(a, b encint.Amount) (encint.Amount, error) {
	va, err := s.decrypt(a)
	if err != nil {
		return nil, err
	}
	vb, err := s.decrypt(b)
	if err != nil {
		return nil, err
	}
	if va <= vb {
		return s.encrypt(1)
	}
	return s.encrypt(0)
}

// Eq implements encint.Scheme through the key-holder executor.
func (s *Scheme) Eq(a, b encint.Amount) (encint.Amount, error) {
	va, err := s.decrypt(a)
	if err != nil {
		return nil, err
	}
	vb, err := s.decrypt(b)
	if err != nil {
		return nil, err
	}
	if va == vb {
		return s.encrypt(1)
	}
	return s.encrypt(0)
}

// Select implements encint.Scheme. The chosen ciphertext is re-randomized by
// homomorphically adding a fresh encryption of zero, so the output handle
// cannot be linked to either input.
func (s *Scheme) Select(cond, a, b encint.Amount) (encint.Amount, error) {
	vc, err := s.decrypt(cond)
	if err != nil {
		return nil, err
	}
	chosen := b
	if vc != 0 {
		chosen = a
	}
	zero, err := s.encrypt(0)
	if err != nil {
		return nil, err
	}
	return s.Add(chosen, zero)
}

// Reveal implements encint.Revealer. It is consumed by the external
// decryption oracle, never by the funding engine.
func (s *Scheme) Reveal(a encint.Amount) (uint64, error) {
	return s.decrypt(a)
}
