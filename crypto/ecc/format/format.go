// Package format provides conversion between the two affine coordinate
// systems used for BabyJubJub points: the standard Twisted Edwards form
// (a=168700, used by iden3) and the Reduced Twisted Edwards form (a=-1,
// used by gnark-crypto). Both describe the same group; points are mapped by
// rescaling the x coordinate with a fixed factor f where f^2 = -168700 over
// the BN254 scalar field.
package format

import (
	"math/big"

	"github.com/vocdoni/arbo"
)

// scalingFactor is f with f^2 = -168700 mod p, where p is the BN254 scalar
// field order.
var scalingFactor, _ = new(big.Int).SetString(
	"6360561867910373094066688120553762416144456282423235903351243436111059670888", 10)

// FromTEtoRTE converts a point in Twisted Edwards coordinates to Reduced
// Twisted Edwards coordinates: x' = x * f, y' = y.
func FromTEtoRTE(x, y *big.Int) (*big.Int, *big.Int) {
	xRTE := new(big.Int).Mul(x, scalingFactor)
	return arbo.BigToFF(arbo.BN254BaseField, xRTE), y
}

// FromRTEtoTE converts a point in Reduced Twisted Edwards coordinates to
// Twisted Edwards coordinates: x = x' * f^-1, y = y'.
func FromRTEtoTE(x, y *big.Int) (*big.Int, *big.Int) {
	fInv := new(big.Int).ModInverse(scalingFactor, arbo.BN254BaseField)
	xTE := new(big.Int).Mul(x, fInv)
	return arbo.BigToFF(arbo.BN254BaseField, xTE), y
}
