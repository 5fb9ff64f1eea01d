package network

import (
	"testing"

	"github.com/riftchain/utxonet/pkg/block"
	"github.com/riftchain/utxonet/pkg/keys"
	"github.com/riftchain/utxonet/pkg/transaction"
	"github.com/riftchain/utxonet/pkg/utxo"
)

func TestDecodeShutDownSentinel(t *testing.T) {
	msg, err := Decode(EncodeShutDown())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if msg.Kind != KindShutDown {
		t.Fatalf("Kind = %v, want KindShutDown", msg.Kind)
	}
}

func TestEncodeDecodeTransactionRoundTrip(t *testing.T) {
	sk, err := keys.Generate()
	if err != nil {
		t.Fatalf("keys.Generate: %v", err)
	}
	tx, err := transaction.New([]utxo.Id{{Vout: 1}}, []transaction.Output{{Amount: 5, Owner: sk.Public()}}, sk)
	if err != nil {
		t.Fatalf("transaction.New: %v", err)
	}

	msg, err := Decode(EncodeTransaction(tx))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if msg.Kind != KindTransaction {
		t.Fatalf("Kind = %v, want KindTransaction", msg.Kind)
	}
	if msg.Transaction.Id() != tx.Id() {
		t.Fatalf("decoded transaction id mismatch")
	}
}

func TestEncodeDecodeBlockRoundTrip(t *testing.T) {
	target, err := block.NewTarget(3, [3]byte{0xff, 0xff, 0xff})
	if err != nil {
		t.Fatalf("NewTarget: %v", err)
	}
	b := block.Genesis(target)

	msg, err := Decode(EncodeBlock(b))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if msg.Kind != KindBlock {
		t.Fatalf("Kind = %v, want KindBlock", msg.Kind)
	}
	if msg.Block.Id() != b.Id() {
		t.Fatalf("decoded block id mismatch")
	}
}

func TestDecodeRejectsEmptyAndUnknownTags(t *testing.T) {
	if _, err := Decode(nil); err == nil {
		t.Fatalf("expected an error decoding an empty message")
	}
	if _, err := Decode([]byte("x")); err == nil {
		t.Fatalf("expected an error decoding an unknown tag")
	}
}
