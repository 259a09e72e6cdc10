package ethereum

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestKeyImportExport(t *testing.T) {
	c := qt.New(t)

	s := NewSignKeys()
	c.Assert(s.Generate(), qt.IsNil)
	pub, priv := s.HexString()
	c.Assert(pub, qt.Not(qt.Equals), "")
	c.Assert(priv, qt.Not(qt.Equals), "")

	// importing the exported private key yields the same pair, with or
	// without the 0x prefix
	imported := NewSignKeys()
	c.Assert(imported.AddHexKey("0x"+priv), qt.IsNil)
	importedPub, importedPriv := imported.HexString()
	c.Assert(importedPub, qt.Equals, pub)
	c.Assert(importedPriv, qt.Equals, priv)
	c.Assert(imported.Address(), qt.Equals, s.Address())
}

func TestSignAndRecover(t *testing.T) {
	c := qt.New(t)

	s := NewSignKeys()
	c.Assert(s.Generate(), qt.IsNil)

	addr, err := AddrFromPublicKey(s.PublicKey())
	c.Assert(err, qt.IsNil)
	c.Assert(addr, qt.Equals, s.Address())

	payload := []byte("1round one17567000001756800000100000")
	signature, err := s.SignEthereum(payload)
	c.Assert(err, qt.IsNil)

	recovered, err := AddrFromSignature(payload, signature)
	c.Assert(err, qt.IsNil)
	c.Assert(recovered, qt.Equals, addr)

	// a tampered payload recovers some other address, so the caller's
	// identity check fails
	tampered := append([]byte{}, payload...)
	tampered[len(tampered)-1]++
	recovered, err = AddrFromSignature(tampered, signature)
	c.Assert(err, qt.IsNil)
	c.Assert(recovered, qt.Not(qt.Equals), addr)
}

func TestRecoverMalformedSignature(t *testing.T) {
	c := qt.New(t)

	_, err := AddrFromSignature([]byte("payload"), []byte{0x01, 0x02})
	c.Assert(err, qt.IsNotNil)

	s := NewSignKeys()
	_, err = s.SignEthereum([]byte("payload"))
	c.Assert(err, qt.IsNotNil) // no private key loaded
}
