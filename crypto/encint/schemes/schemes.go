// Package schemes resolves encint.Scheme implementations by type and manages
// per-round encryption keys. Each round gets its own key pair, generated when
// the round is created and persisted alongside the round artifacts.
package schemes

import (
	"fmt"
	"sync"

	"github.com/vocdoni/qf-z-sandbox/crypto/ecc/curves"
	"github.com/vocdoni/qf-z-sandbox/crypto/encint"
	"github.com/vocdoni/qf-z-sandbox/crypto/encint/cleartext"
	"github.com/vocdoni/qf-z-sandbox/crypto/encint/elgamal"
	"github.com/vocdoni/qf-z-sandbox/storage"
	"github.com/vocdoni/qf-z-sandbox/types"
)

// New creates a new instance of a Scheme implementation based on the
// provided type string. ElGamal schemes are created with a fresh key pair on
// the default BabyJubJub curve. If the type is not supported, it returns an
// error.
func New(schemeType string) (encint.Scheme, error) {
	switch schemeType {
	case cleartext.SchemeType:
		return cleartext.New(), nil
	case elgamal.SchemeType:
		return elgamal.Generate(curves.New(curves.CurveTypeBabyJubJub))
	default:
		return nil, fmt.Errorf("unsupported scheme type: %s", schemeType)
	}
}

// Provider resolves the scheme instance of a round. For the elgamal type it
// generates a key pair per round, persists it and caches the loaded scheme;
// the cleartext type is stateless and shared across rounds.
type Provider struct {
	schemeType string
	curveType  string
	stg        *storage.Storage
	shared     *cleartext.Scheme

	mu    sync.Mutex
	cache map[string]*elgamal.Scheme
}

// NewProvider creates a scheme provider of the given type backed by storage.
func NewProvider(schemeType string, stg *storage.Storage) (*Provider, error) {
	p := &Provider{
		schemeType: schemeType,
		curveType:  curves.CurveTypeBabyJubJub,
		stg:        stg,
		cache:      make(map[string]*elgamal.Scheme),
	}
	switch schemeType {
	case cleartext.SchemeType:
		p.shared = cleartext.New()
	case elgamal.SchemeType:
	default:
		return nil, fmt.Errorf("unsupported scheme type: %s", schemeType)
	}
	return p, nil
}

// Type returns the scheme type identifier of the provider.
func (p *Provider) Type() string { return p.schemeType }

// SetCurve selects the elliptic curve backend for elgamal round keys. All
// rounds of a deployment must use the same backend, since stored keys are
// deserialized with the curve configured at load time.
func (p *Provider) SetCurve(curveType string) error {
	switch curveType {
	case curves.CurveTypeBabyJubJubGnark, curves.CurveTypeBabyJubJubIden3:
		p.curveType = curveType
		return nil
	default:
		return fmt.Errorf("unsupported curve type: %s", curveType)
	}
}

// GenerateKey creates and persists the encryption key pair of a round, and
// returns the public key donors encrypt against. The cleartext type has no
// keys and returns nil.
func (p *Provider) GenerateKey(rid *types.RoundID) (*types.EncryptionKey, error) {
	if p.schemeType == cleartext.SchemeType {
		return nil, nil
	}
	curve := curves.New(p.curveType)
	pub, priv, err := elgamal.GenerateKey(curve)
	if err != nil {
		return nil, fmt.Errorf("could not generate round key: %w", err)
	}
	if err := p.stg.SetEncryptionKeys(rid, pub, priv); err != nil {
		return nil, fmt.Errorf("could not store round key: %w", err)
	}
	p.mu.Lock()
	p.cache[string(rid.Marshal())] = elgamal.New(curve, pub, priv)
	p.mu.Unlock()
	x, y := pub.Point()
	return &types.EncryptionKey{
		X: (*types.BigInt)(x),
		Y: (*types.BigInt)(y),
	}, nil
}

// SchemeFor returns the scheme instance holding the round's key pair.
func (p *Provider) SchemeFor(rid *types.RoundID) (encint.Scheme, error) {
	if p.schemeType == cleartext.SchemeType {
		return p.shared, nil
	}
	return p.elgamalFor(rid)
}

// RevealerFor returns the controlled decryption capability of the round. It
// is consumed by the external oracle only.
func (p *Provider) RevealerFor(rid *types.RoundID) (encint.Revealer, error) {
	if p.schemeType == cleartext.SchemeType {
		return p.shared, nil
	}
	return p.elgamalFor(rid)
}

func (p *Provider) elgamalFor(rid *types.RoundID) (*elgamal.Scheme, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.cache[string(rid.Marshal())]; ok {
		return s, nil
	}
	eks, err := p.stg.EncryptionKeys(rid)
	if err != nil {
		return nil, fmt.Errorf("could not load round key: %w", err)
	}
	curve := curves.New(p.curveType)
	pub := curves.New(p.curveType).SetPoint(eks.X, eks.Y)
	s := elgamal.New(curve, pub, eks.PrivateKey)
	p.cache[string(rid.Marshal())] = s
	return s, nil
}
