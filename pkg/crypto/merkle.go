package crypto

import "github.com/riftchain/utxonet/pkg/types"

// EmptyMerkleRoot is the fixed root assigned to a block that carries no
// transactions (the genesis block). It is a sentinel constant rather than
// a computed hash, matching the encoding rule for empty input.
var EmptyMerkleRoot = types.Hash{
	0x4a, 0x5e, 0x1e, 0x4b, 0xaa, 0xb8, 0x9f, 0x3a,
	0x32, 0x51, 0x8a, 0x88, 0xc3, 0x1b, 0xc8, 0x7f,
	0x61, 0x8f, 0x76, 0x67, 0x3e, 0x2c, 0xc7, 0x7a,
	0xb2, 0x12, 0x7b, 0x7a, 0xfd, 0xed, 0xa3, 0x3b,
}

// MerkleRoot computes the complete-binary-tree root over a list of
// transaction ids by pairwise single-SHA256 merging, duplicating the
// trailing element whenever a layer has an odd count.
func MerkleRoot(ids []types.Hash) types.Hash {
	if len(ids) == 0 {
		return EmptyMerkleRoot
	}

	level := make([]types.Hash, len(ids))
	copy(level, ids)

	for len(level) > 1 {
		next := make([]types.Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			left := level[i]
			right := left
			if i+1 < len(level) {
				right = level[i+1]
			}
			combined := make([]byte, 0, 64)
			combined = append(combined, left[:]...)
			combined = append(combined, right[:]...)
			next = append(next, Sha256(combined))
		}
		level = next
	}

	return level[0]
}
