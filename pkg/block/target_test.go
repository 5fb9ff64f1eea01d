package block

import (
	"testing"

	"github.com/riftchain/utxonet/pkg/types"
)

func TestTargetThresholdPlacement(t *testing.T) {
	target, err := NewTarget(3, [3]byte{0x00, 0x00, 0x01})
	if err != nil {
		t.Fatalf("NewTarget: %v", err)
	}
	threshold := target.Threshold()

	var want types.Hash
	want[31] = 0x01
	if threshold != want {
		t.Fatalf("Threshold() = %x, want %x", threshold, want)
	}
}

func TestTargetThresholdHighExponent(t *testing.T) {
	target, err := NewTarget(32, [3]byte{0x80, 0x00, 0x00})
	if err != nil {
		t.Fatalf("NewTarget: %v", err)
	}
	threshold := target.Threshold()
	if threshold[0] != 0x80 {
		t.Fatalf("Threshold()[0] = %x, want the coefficient's top bit at byte 0", threshold[0])
	}
}

func TestTargetRejectsOutOfRangeExponent(t *testing.T) {
	if _, err := NewTarget(2, [3]byte{}); err == nil {
		t.Fatalf("expected an error for exponent below 3")
	}
	if _, err := NewTarget(33, [3]byte{}); err == nil {
		t.Fatalf("expected an error for exponent above 32")
	}
}

func TestTargetSatisfies(t *testing.T) {
	target, err := NewTarget(32, [3]byte{0xff, 0xff, 0xff})
	if err != nil {
		t.Fatalf("NewTarget: %v", err)
	}
	var low types.Hash
	low[0] = 0x00
	if !target.Satisfies(low) {
		t.Fatalf("an all-zero id should satisfy any non-trivial target")
	}

	var high types.Hash
	for i := range high {
		high[i] = 0xff
	}
	if target.Satisfies(high) {
		t.Fatalf("an all-0xff id should not satisfy the target")
	}
}

func TestTargetSerializeRoundTrip(t *testing.T) {
	target, err := NewTarget(17, [3]byte{0x01, 0x02, 0x03})
	if err != nil {
		t.Fatalf("NewTarget: %v", err)
	}
	data := target.Serialize()
	if len(data) != TargetLen {
		t.Fatalf("Serialize() length = %d, want %d", len(data), TargetLen)
	}
	got, err := DeserializeTarget(data)
	if err != nil {
		t.Fatalf("DeserializeTarget: %v", err)
	}
	if got != target {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, target)
	}
}
