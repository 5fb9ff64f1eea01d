package keys

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// CompressedLen is the wire size of a serialized public key (spec §6,
// "UtxoData / Output", 33-byte compressed public key).
const CompressedLen = 33

// PublicKey is a secp256k1 verification key.
type PublicKey struct {
	key *secp256k1.PublicKey
}

// Bytes returns the 33-byte compressed encoding.
func (pub *PublicKey) Bytes() []byte {
	return pub.key.SerializeCompressed()
}

// ParsePublicKey decodes a 33-byte compressed public key.
func ParsePublicKey(data []byte) (*PublicKey, error) {
	if len(data) != CompressedLen {
		return nil, fmt.Errorf("public key must be %d bytes, got %d", CompressedLen, len(data))
	}
	key, err := secp256k1.ParsePubKey(data)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	return &PublicKey{key: key}, nil
}

// Equal reports whether two public keys are the same point.
func (pub *PublicKey) Equal(other *PublicKey) bool {
	if pub == nil || other == nil {
		return pub == other
	}
	return pub.key.IsEqual(other.key)
}

// String returns the hex encoding of the compressed key.
func (pub *PublicKey) String() string {
	return fmt.Sprintf("%x", pub.Bytes())
}

// Verify checks a compact signature over a 32-byte digest.
func (pub *PublicKey) Verify(digest [32]byte, sig Signature) bool {
	ecdsaSig, err := sig.toEcdsa()
	if err != nil {
		return false
	}
	return ecdsaSig.Verify(digest[:], pub.key)
}
