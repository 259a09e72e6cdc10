package elgamal

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/qf-z-sandbox/crypto/ecc/curves"
	"github.com/vocdoni/qf-z-sandbox/crypto/encint"
)

func newScheme(c *qt.C) *Scheme {
	s, err := Generate(curves.New(curves.CurveTypeBabyJubJub))
	c.Assert(err, qt.IsNil)
	return s
}

func TestEncryptReveal(t *testing.T) {
	c := qt.New(t)
	s := newScheme(c)

	a, err := s.Encrypt(12345)
	c.Assert(err, qt.IsNil)
	v, err := s.Reveal(a)
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.Equals, uint64(12345))

	// two encryptions of the same value produce different handles
	b, err := s.Encrypt(12345)
	c.Assert(err, qt.IsNil)
	c.Assert(string(b), qt.Not(qt.Equals), string(a))
}

func TestHomomorphicAddSub(t *testing.T) {
	c := qt.New(t)
	s := newScheme(c)

	a, err := s.Encrypt(1000)
	c.Assert(err, qt.IsNil)
	b, err := s.Encrypt(234)
	c.Assert(err, qt.IsNil)

	sum, err := s.Add(a, b)
	c.Assert(err, qt.IsNil)
	v, err := s.Reveal(sum)
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.Equals, uint64(1234))

	diff, err := s.Sub(a, b)
	c.Assert(err, qt.IsNil)
	v, err = s.Reveal(diff)
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.Equals, uint64(766))
}

func TestExecutorOps(t *testing.T) {
	c := qt.New(t)
	s := newScheme(c)

	a, err := s.Encrypt(6)
	c.Assert(err, qt.IsNil)
	b, err := s.Encrypt(7)
	c.Assert(err, qt.IsNil)

	prod, err := s.Mul(a, b)
	c.Assert(err, qt.IsNil)
	v, err := s.Reveal(prod)
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.Equals, uint64(42))

	q, err := s.DivScalar(prod, 5)
	c.Assert(err, qt.IsNil)
	v, err = s.Reveal(q)
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.Equals, uint64(8))

	_, err = s.DivScalar(prod, 0)
	c.Assert(err, qt.ErrorIs, encint.ErrZeroDivisor)

	le, err := s.Le(a, b)
	c.Assert(err, qt.IsNil)
	v, err = s.Reveal(le)
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.Equals, uint64(1))

	eq, err := s.Eq(a, b)
	c.Assert(err, qt.IsNil)
	v, err = s.Reveal(eq)
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.Equals, uint64(0))
}

func TestSelectRerandomizes(t *testing.T) {
	c := qt.New(t)
	s := newScheme(c)

	a, err := s.Encrypt(11)
	c.Assert(err, qt.IsNil)
	b, err := s.Encrypt(22)
	c.Assert(err, qt.IsNil)
	cond, err := s.Encrypt(1)
	c.Assert(err, qt.IsNil)

	chosen, err := s.Select(cond, a, b)
	c.Assert(err, qt.IsNil)
	v, err := s.Reveal(chosen)
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.Equals, uint64(11))
	// the output handle must not equal either input
	c.Assert(string(chosen), qt.Not(qt.Equals), string(a))
	c.Assert(string(chosen), qt.Not(qt.Equals), string(b))

	cond, err = s.Encrypt(0)
	c.Assert(err, qt.IsNil)
	chosen, err = s.Select(cond, a, b)
	c.Assert(err, qt.IsNil)
	v, err = s.Reveal(chosen)
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.Equals, uint64(22))
}

func TestSafeArithmetic(t *testing.T) {
	c := qt.New(t)
	s := newScheme(c)

	a, err := s.Encrypt(encint.MaxValue - 1)
	c.Assert(err, qt.IsNil)
	b, err := s.Encrypt(10)
	c.Assert(err, qt.IsNil)

	sum, err := encint.SafeAdd(s, a, b)
	c.Assert(err, qt.IsNil)
	v, err := s.Reveal(sum)
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.Equals, encint.MaxValue)

	diff, err := encint.SafeSub(s, b, a)
	c.Assert(err, qt.IsNil)
	v, err = s.Reveal(diff)
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.Equals, uint64(0))
}

func TestEncryptAddOnlyInstance(t *testing.T) {
	c := qt.New(t)
	s := newScheme(c)

	// a donor-side instance holds the public key only
	donor := New(curves.New(curves.CurveTypeBabyJubJub), s.PublicKey(), nil)
	a, err := donor.Encrypt(500)
	c.Assert(err, qt.IsNil)
	b, err := donor.Encrypt(300)
	c.Assert(err, qt.IsNil)
	sum, err := donor.Add(a, b)
	c.Assert(err, qt.IsNil)

	// only the key holder can open the result
	v, err := s.Reveal(sum)
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.Equals, uint64(800))
}
