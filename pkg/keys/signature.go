package keys

import (
	"encoding/hex"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// SignatureLen is the wire size of a compact signature (spec §6, "Input",
// 64-byte compact signature: 32-byte R ‖ 32-byte S). There is no DER
// encoding anywhere in this system — the wire format is fixed width.
const SignatureLen = 64

// Signature is a 64-byte compact (R ‖ S) ECDSA signature.
type Signature [SignatureLen]byte

func signatureFromEcdsa(sig *ecdsa.Signature) Signature {
	var out Signature
	r := sig.R()
	s := sig.S()
	var rBytes, sBytes [32]byte
	r.PutBytes(&rBytes)
	s.PutBytes(&sBytes)
	copy(out[0:32], rBytes[:])
	copy(out[32:64], sBytes[:])
	return out
}

func (s Signature) toEcdsa() (*ecdsa.Signature, error) {
	var r, sVal secp256k1.ModNScalar
	if overflow := r.SetByteSlice(s[0:32]); overflow {
		return nil, fmt.Errorf("signature R overflows the group order")
	}
	if overflow := sVal.SetByteSlice(s[32:64]); overflow {
		return nil, fmt.Errorf("signature S overflows the group order")
	}
	return ecdsa.NewSignature(&r, &sVal), nil
}

// ParseSignature decodes a 64-byte compact signature from the wire.
func ParseSignature(data []byte) (Signature, error) {
	var sig Signature
	if len(data) != SignatureLen {
		return sig, fmt.Errorf("signature must be %d bytes, got %d", SignatureLen, len(data))
	}
	copy(sig[:], data)
	return sig, nil
}

// Bytes returns the raw 64-byte encoding.
func (s Signature) Bytes() []byte {
	return s[:]
}

// String returns the hex encoding.
func (s Signature) String() string {
	return hex.EncodeToString(s[:])
}
