package schemes

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"go.vocdoni.io/dvote/db/metadb"

	"github.com/vocdoni/qf-z-sandbox/crypto/ecc/curves"
	"github.com/vocdoni/qf-z-sandbox/crypto/encint/cleartext"
	"github.com/vocdoni/qf-z-sandbox/crypto/encint/elgamal"
	"github.com/vocdoni/qf-z-sandbox/storage"
	"github.com/vocdoni/qf-z-sandbox/types"
)

func testRoundID(nonce uint64) *types.RoundID {
	return &types.RoundID{
		Address: common.HexToAddress("0xcc00000000000000000000000000000000000001"),
		Nonce:   nonce,
		ChainID: 1,
	}
}

func TestProviderUnsupported(t *testing.T) {
	c := qt.New(t)
	stg := storage.New(metadb.NewTest(t))

	_, err := NewProvider("paillier", stg)
	c.Assert(err, qt.IsNotNil)

	p, err := NewProvider(elgamal.SchemeType, stg)
	c.Assert(err, qt.IsNil)
	c.Assert(p.SetCurve("p256"), qt.IsNotNil)
}

func TestProviderCleartext(t *testing.T) {
	c := qt.New(t)
	stg := storage.New(metadb.NewTest(t))

	p, err := NewProvider(cleartext.SchemeType, stg)
	c.Assert(err, qt.IsNil)

	// no keys for the cleartext type
	key, err := p.GenerateKey(testRoundID(1))
	c.Assert(err, qt.IsNil)
	c.Assert(key, qt.IsNil)

	// the shared stateless scheme serves every round
	s1, err := p.SchemeFor(testRoundID(1))
	c.Assert(err, qt.IsNil)
	s2, err := p.SchemeFor(testRoundID(2))
	c.Assert(err, qt.IsNil)
	c.Assert(s1, qt.Equals, s2)
}

func TestProviderElgamalCurves(t *testing.T) {
	for _, curveType := range []string{
		curves.CurveTypeBabyJubJubGnark,
		curves.CurveTypeBabyJubJubIden3,
	} {
		t.Run(curveType, func(t *testing.T) {
			c := qt.New(t)
			stg := storage.New(metadb.NewTest(t))

			p, err := NewProvider(elgamal.SchemeType, stg)
			c.Assert(err, qt.IsNil)
			c.Assert(p.SetCurve(curveType), qt.IsNil)

			rid := testRoundID(1)
			key, err := p.GenerateKey(rid)
			c.Assert(err, qt.IsNil)
			c.Assert(key, qt.IsNotNil)

			scheme, err := p.SchemeFor(rid)
			c.Assert(err, qt.IsNil)
			enc, err := scheme.Encrypt(777)
			c.Assert(err, qt.IsNil)

			revealer, err := p.RevealerFor(rid)
			c.Assert(err, qt.IsNil)
			v, err := revealer.Reveal(enc)
			c.Assert(err, qt.IsNil)
			c.Assert(v, qt.Equals, uint64(777))

			// a fresh provider reloads the persisted key pair from storage
			p2, err := NewProvider(elgamal.SchemeType, stg)
			c.Assert(err, qt.IsNil)
			c.Assert(p2.SetCurve(curveType), qt.IsNil)
			revealer, err = p2.RevealerFor(rid)
			c.Assert(err, qt.IsNil)
			v, err = revealer.Reveal(enc)
			c.Assert(err, qt.IsNil)
			c.Assert(v, qt.Equals, uint64(777))

			_, err = p2.SchemeFor(testRoundID(9))
			c.Assert(err, qt.IsNotNil)
		})
	}
}
