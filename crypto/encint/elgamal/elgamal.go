// Package elgamal implements the encint.Scheme interface with additively
// homomorphic ElGamal over BabyJubJub. Additions and subtractions are pure
// ciphertext operations; the remaining primitives (mul, div, compare,
// select) are executed by a key-holder inside the scheme boundary, standing
// in for an FHE coprocessor. No plaintext ever crosses the scheme boundary.
package elgamal

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"

	"github.com/vocdoni/arbo"
	"github.com/vocdoni/qf-z-sandbox/crypto/ecc"
)

// RandK generates a random k value for encryption.
func RandK() (*big.Int, error) {
	kBytes := make([]byte, 20)
	if _, err := rand.Read(kBytes); err != nil {
		return nil, fmt.Errorf("failed to generate random k: %v", err)
	}
	k := new(big.Int).SetBytes(kBytes)
	return arbo.BigToFF(arbo.BN254BaseField, k), nil
}

// GenerateKey generates a new public/private ElGamal encryption key pair on
// the given curve.
func GenerateKey(curve ecc.Point) (publicKey ecc.Point, privateKey *big.Int, err error) {
	order := curve.Order()
	d, err := rand.Int(rand.Reader, order)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate private key scalar: %v", err)
	}
	if d.Sign() == 0 {
		d = big.NewInt(1) // avoid zero private keys
	}
	publicKey = curve.New()
	publicKey.SetGenerator()
	publicKey.ScalarMult(publicKey, d)
	return publicKey, d, nil
}

// EncryptWithK encrypts a message using the public key and the provided
// random k value. It returns the two points that represent the encrypted
// message.
func EncryptWithK(pubKey ecc.Point, msg, k *big.Int) (ecc.Point, ecc.Point, error) {
	order := pubKey.Order()
	msg = new(big.Int).Mod(msg, order)
	// compute C1 = k * G
	c1 := pubKey.New()
	c1.ScalarBaseMult(k)
	// compute s = k * pubKey
	s := pubKey.New()
	s.ScalarMult(pubKey, k)
	// encode message as point M = message * G
	m := pubKey.New()
	m.ScalarBaseMult(msg)
	// compute C2 = M + s
	c2 := pubKey.New()
	c2.Add(m, s)
	return c1, c2, nil
}

// DecryptPoint removes the shared secret from a ciphertext (c1, c2) using
// the private key, returning the message point M = c2 - d*c1. Recovering the
// message scalar from M is a separate discrete-log step.
func DecryptPoint(privateKey *big.Int, c1, c2 ecc.Point) ecc.Point {
	dC1 := c2.New()
	dC1.ScalarMult(c1, privateKey)
	dC1.Neg(dC1) // dC1 = -d*c1

	m := c2.New()
	m.Set(c2)
	m.Add(m, dC1) // M = c2 - d*c1
	return m
}

// BabyStepGiantStep solves M = x*G for x in [0, maxMessage] using the
// baby-step giant-step algorithm over elliptic curves.
func BabyStepGiantStep(m, g ecc.Point, maxMessage uint64) (*big.Int, error) {
	mSqrt := uint64(math.Sqrt(float64(maxMessage))) + 1

	// Precompute baby steps: store 0*G, 1*G, ..., mSqrt*G in a map
	babySteps := make(map[string]uint64, mSqrt)
	babyStep := m.New()
	babyStep.SetZero()
	for j := uint64(0); j < mSqrt; j++ {
		babySteps[babyStep.String()] = j
		babyStep.Add(babyStep, g)
	}

	// Giant step: -mSqrt*G
	giantStride := m.New()
	giantStride.ScalarMult(g, new(big.Int).SetUint64(mSqrt))
	giantStride.Neg(giantStride)

	// Search: M - i*mSqrt*G against the baby-step table
	current := m.New()
	current.Set(m)
	for i := uint64(0); i <= mSqrt; i++ {
		if j, ok := babySteps[current.String()]; ok {
			x := new(big.Int).SetUint64(i*mSqrt + j)
			return x, nil
		}
		current.Add(current, giantStride)
	}
	return nil, fmt.Errorf("no discrete log found up to %d", maxMessage)
}
