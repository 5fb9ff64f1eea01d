package crypto

import (
	"testing"

	"github.com/riftchain/utxonet/pkg/types"
)

func TestMerkleRootEmpty(t *testing.T) {
	got := MerkleRoot(nil)
	if got != EmptyMerkleRoot {
		t.Fatalf("MerkleRoot(nil) = %x, want the empty sentinel", got)
	}
}

func TestMerkleRootSingleLeaf(t *testing.T) {
	leaf := Sha256([]byte("leaf"))
	got := MerkleRoot([]types.Hash{leaf})
	if got != leaf {
		t.Fatalf("MerkleRoot of a single leaf should return that leaf unchanged")
	}
}

func TestMerkleRootOddDuplicatesTrailing(t *testing.T) {
	a := Sha256([]byte("a"))
	b := Sha256([]byte("b"))
	c := Sha256([]byte("c"))

	got := MerkleRoot([]types.Hash{a, b, c})

	ab := Sha256(append(append([]byte{}, a[:]...), b[:]...))
	cc := Sha256(append(append([]byte{}, c[:]...), c[:]...))
	want := Sha256(append(append([]byte{}, ab[:]...), cc[:]...))

	if got != want {
		t.Fatalf("MerkleRoot with odd leaf count = %x, want %x", got, want)
	}
}

func TestDoubleSha256(t *testing.T) {
	data := []byte("block header")
	got := DoubleSha256(data)
	first := Sha256(data)
	want := Sha256(first[:])
	if got != want {
		t.Fatalf("DoubleSha256 should equal Sha256(Sha256(data))")
	}
}
