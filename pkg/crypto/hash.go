package crypto

import (
	"crypto/sha256"

	"github.com/riftchain/utxonet/pkg/types"
)

// Sha256 is the single-round hash used for transaction ids and the
// spend-digest that every input signature authenticates.
func Sha256(data []byte) types.Hash {
	return sha256.Sum256(data)
}

// DoubleSha256 is SHA-256 applied twice, used for block ids.
func DoubleSha256(data []byte) types.Hash {
	first := sha256.Sum256(data)
	return sha256.Sum256(first[:])
}
