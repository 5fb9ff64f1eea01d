// Package keys wraps secp256k1 key generation and ECDSA signing behind a
// fixed-width, compact-signature-only API. There are no addresses: outputs
// in this system pay directly to a compressed public key.
package keys

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// PrivateKey is a secp256k1 signing key.
type PrivateKey struct {
	key *secp256k1.PrivateKey
}

// Generate creates a new random private key.
func Generate() (*PrivateKey, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate private key: %w", err)
	}
	return &PrivateKey{key: key}, nil
}

// PrivateKeyFromBytes reconstructs a private key from its 32-byte encoding.
func PrivateKeyFromBytes(data []byte) (*PrivateKey, error) {
	if len(data) != 32 {
		return nil, fmt.Errorf("private key must be 32 bytes, got %d", len(data))
	}
	return &PrivateKey{key: secp256k1.PrivKeyFromBytes(data)}, nil
}

// Bytes returns the 32-byte scalar encoding.
func (pk *PrivateKey) Bytes() []byte {
	return pk.key.Serialize()
}

// Public derives the corresponding public key.
func (pk *PrivateKey) Public() *PublicKey {
	return &PublicKey{key: pk.key.PubKey()}
}

// Sign produces a compact (64-byte R‖S) signature over a 32-byte digest.
func (pk *PrivateKey) Sign(digest [32]byte) Signature {
	sig := ecdsa.Sign(pk.key, digest[:])
	return signatureFromEcdsa(sig)
}
