package block

import (
	"errors"
	"fmt"

	"github.com/riftchain/utxonet/pkg/types"
)

// ErrInvalidTargetExponent is returned when a Target's exponent falls
// outside the valid [3, 32] range (spec §4.7).
var ErrInvalidTargetExponent = errors.New("target exponent must be in [3, 32]")

// TargetLen is the wire size of a Target (spec §6: part of the 4-byte
// target field in the header — 1-byte exponent, 3-byte coefficient).
const TargetLen = 4

// Target is the compact-form proof-of-work threshold: coefficient *
// 2^(8*(exponent-3)).
type Target struct {
	Exponent    uint8
	Coefficient [3]byte
}

// NewTarget validates and constructs a Target.
func NewTarget(exponent uint8, coefficient [3]byte) (Target, error) {
	if exponent < 3 || exponent > 32 {
		return Target{}, fmt.Errorf("%w: got %d", ErrInvalidTargetExponent, exponent)
	}
	return Target{Exponent: exponent, Coefficient: coefficient}, nil
}

// Threshold computes the 256-bit threshold hash H_T: coefficient's three
// bytes, consumed least-significant-bit first, are written into the
// zero-initialised 256-bit value starting at bit index 255-8*(exponent-3)
// and descending — the standard compact-target bit layout (spec §4.7).
func (t Target) Threshold() types.Hash {
	var h types.Hash
	trailingZeroes := 8 * int(t.Exponent-3)
	i := 255 - trailingZeroes
	c := uint32(t.Coefficient[0])<<16 | uint32(t.Coefficient[1])<<8 | uint32(t.Coefficient[2])
	for c != 0 {
		bit := byte(c) & 1
		h[i/8] |= bit << uint(7-i%8)
		c >>= 1
		i--
	}
	return h
}

// Satisfies reports whether id, read as a big-endian 256-bit integer, is
// below this target's threshold.
func (t Target) Satisfies(id types.Hash) bool {
	return id.Less(t.Threshold())
}

// Serialize encodes the target as its fixed 4-byte wire record.
func (t Target) Serialize() []byte {
	return []byte{t.Exponent, t.Coefficient[0], t.Coefficient[1], t.Coefficient[2]}
}

// DeserializeTarget decodes a 4-byte wire record into a Target.
func DeserializeTarget(data []byte) (Target, error) {
	if len(data) < TargetLen {
		return Target{}, fmt.Errorf("target: need %d bytes, got %d", TargetLen, len(data))
	}
	return NewTarget(data[0], [3]byte{data[1], data[2], data[3]})
}
