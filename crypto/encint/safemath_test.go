package encint_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/qf-z-sandbox/crypto/encint"
	"github.com/vocdoni/qf-z-sandbox/crypto/encint/cleartext"
)

func enc(c *qt.C, s encint.Scheme, v uint64) encint.Amount {
	a, err := s.Encrypt(v)
	c.Assert(err, qt.IsNil)
	return a
}

func reveal(c *qt.C, r encint.Revealer, a encint.Amount) uint64 {
	v, err := r.Reveal(a)
	c.Assert(err, qt.IsNil)
	return v
}

func TestSafeAdd(t *testing.T) {
	c := qt.New(t)
	s := cleartext.New()

	sum, err := encint.SafeAdd(s, enc(c, s, 100), enc(c, s, 200))
	c.Assert(err, qt.IsNil)
	c.Assert(reveal(c, s, sum), qt.Equals, uint64(300))

	// overflow clamps to the maximum representable value
	sum, err = encint.SafeAdd(s, enc(c, s, encint.MaxValue-10), enc(c, s, 100))
	c.Assert(err, qt.IsNil)
	c.Assert(reveal(c, s, sum), qt.Equals, encint.MaxValue)

	sum, err = encint.SafeAdd(s, enc(c, s, encint.MaxValue), enc(c, s, encint.MaxValue))
	c.Assert(err, qt.IsNil)
	c.Assert(reveal(c, s, sum), qt.Equals, encint.MaxValue)
}

func TestSafeSub(t *testing.T) {
	c := qt.New(t)
	s := cleartext.New()

	diff, err := encint.SafeSub(s, enc(c, s, 300), enc(c, s, 200))
	c.Assert(err, qt.IsNil)
	c.Assert(reveal(c, s, diff), qt.Equals, uint64(100))

	// underflow clamps to zero
	diff, err = encint.SafeSub(s, enc(c, s, 200), enc(c, s, 300))
	c.Assert(err, qt.IsNil)
	c.Assert(reveal(c, s, diff), qt.Equals, uint64(0))

	diff, err = encint.SafeSub(s, enc(c, s, 42), enc(c, s, 42))
	c.Assert(err, qt.IsNil)
	c.Assert(reveal(c, s, diff), qt.Equals, uint64(0))
}

func TestSafeMul(t *testing.T) {
	c := qt.New(t)
	s := cleartext.New()

	prod, err := encint.SafeMul(s, enc(c, s, 123), enc(c, s, 1000))
	c.Assert(err, qt.IsNil)
	c.Assert(reveal(c, s, prod), qt.Equals, uint64(123000))
}

func TestDivByPlaintext(t *testing.T) {
	c := qt.New(t)
	s := cleartext.New()

	q, err := encint.DivByPlaintext(s, enc(c, s, 1001), 10)
	c.Assert(err, qt.IsNil)
	c.Assert(reveal(c, s, q), qt.Equals, uint64(100))

	_, err = encint.DivByPlaintext(s, enc(c, s, 1001), 0)
	c.Assert(err, qt.ErrorIs, encint.ErrZeroDivisor)
}

func TestPercentageOf(t *testing.T) {
	c := qt.New(t)
	s := cleartext.New()

	// 20% of 10000
	p, err := encint.PercentageOf(s, enc(c, s, 10000), 2000)
	c.Assert(err, qt.IsNil)
	c.Assert(reveal(c, s, p), qt.Equals, uint64(2000))

	// 100%
	p, err = encint.PercentageOf(s, enc(c, s, 12345), 10000)
	c.Assert(err, qt.IsNil)
	c.Assert(reveal(c, s, p), qt.Equals, uint64(12345))

	_, err = encint.PercentageOf(s, enc(c, s, 1), 10001)
	c.Assert(err, qt.ErrorIs, encint.ErrInvalidBps)
}

func TestMinMax(t *testing.T) {
	c := qt.New(t)
	s := cleartext.New()

	m, err := encint.Min(s, enc(c, s, 10), enc(c, s, 20))
	c.Assert(err, qt.IsNil)
	c.Assert(reveal(c, s, m), qt.Equals, uint64(10))

	m, err = encint.Max(s, enc(c, s, 10), enc(c, s, 20))
	c.Assert(err, qt.IsNil)
	c.Assert(reveal(c, s, m), qt.Equals, uint64(20))

	m, err = encint.Min(s, enc(c, s, 7), enc(c, s, 7))
	c.Assert(err, qt.IsNil)
	c.Assert(reveal(c, s, m), qt.Equals, uint64(7))
}

func TestHalvingSqrt(t *testing.T) {
	c := qt.New(t)
	s := cleartext.New()

	r, err := encint.DefaultSqrt.Sqrt(s, enc(c, s, 100))
	c.Assert(err, qt.IsNil)
	c.Assert(reveal(c, s, r), qt.Equals, uint64(50))

	r, err = encint.DefaultSqrt.Sqrt(s, enc(c, s, 0))
	c.Assert(err, qt.IsNil)
	c.Assert(reveal(c, s, r), qt.Equals, uint64(0))

	r, err = encint.DefaultSqrt.Sqrt(s, enc(c, s, 1))
	c.Assert(err, qt.IsNil)
	c.Assert(reveal(c, s, r), qt.Equals, uint64(0))
}
