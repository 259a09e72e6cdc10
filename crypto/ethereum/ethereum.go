// Package ethereum provides secp256k1 signing keys and Ethereum-style
// signature recovery, used to authenticate round organizers and project
// owners by address.
package ethereum

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/vocdoni/qf-z-sandbox/util"
)

// SignKeys is an ECDSA key pair over the secp256k1 curve.
type SignKeys struct {
	Public  ecdsa.PublicKey
	Private ecdsa.PrivateKey
}

// NewSignKeys creates an empty SignKeys.
func NewSignKeys() *SignKeys {
	return &SignKeys{}
}

// Generate creates a fresh random key pair.
func (k *SignKeys) Generate() error {
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		return err
	}
	k.Private = *key
	k.Public = key.PublicKey
	return nil
}

// AddHexKey imports a private key from its hexadecimal representation.
func (k *SignKeys) AddHexKey(privHex string) error {
	key, err := ethcrypto.HexToECDSA(util.TrimHex(privHex))
	if err != nil {
		return err
	}
	k.Private = *key
	k.Public = key.PublicKey
	return nil
}

// HexString returns the compressed public key and the private key as
// hexadecimal strings.
func (k *SignKeys) HexString() (string, string) {
	pub := hex.EncodeToString(k.PublicKey())
	priv := hex.EncodeToString(ethcrypto.FromECDSA(&k.Private))
	return pub, priv
}

// PublicKey returns the compressed public key bytes.
func (k *SignKeys) PublicKey() []byte {
	return ethcrypto.CompressPubkey(&k.Public)
}

// Address returns the Ethereum address derived from the public key.
func (k *SignKeys) Address() common.Address {
	return ethcrypto.PubkeyToAddress(k.Public)
}

// AddressString returns the checksummed string form of the address.
func (k *SignKeys) AddressString() string {
	return k.Address().String()
}

// SignEthereum signs a message using the Ethereum personal-message prefix.
func (k *SignKeys) SignEthereum(message []byte) ([]byte, error) {
	if k.Private.D == nil {
		return nil, fmt.Errorf("no private key available")
	}
	return ethcrypto.Sign(Hash(message), &k.Private)
}

// Hash returns the keccak256 hash of the message with the Ethereum
// personal-message prefix applied.
func Hash(message []byte) []byte {
	prefix := fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(message))
	return ethcrypto.Keccak256(append([]byte(prefix), message...))
}

// HashRaw returns the keccak256 hash of the data without any prefix.
func HashRaw(data []byte) []byte {
	return ethcrypto.Keccak256(data)
}

// AddrFromPublicKey converts a compressed public key to an address.
func AddrFromPublicKey(pub []byte) (common.Address, error) {
	pk, err := ethcrypto.DecompressPubkey(pub)
	if err != nil {
		return common.Address{}, err
	}
	return ethcrypto.PubkeyToAddress(*pk), nil
}

// AddrFromSignature recovers the address that signed a prefixed message.
func AddrFromSignature(message, signature []byte) (common.Address, error) {
	pub, err := ethcrypto.SigToPub(Hash(message), signature)
	if err != nil {
		return common.Address{}, err
	}
	return ethcrypto.PubkeyToAddress(*pub), nil
}
