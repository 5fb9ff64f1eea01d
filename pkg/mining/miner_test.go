package mining

import (
	"testing"

	"github.com/riftchain/utxonet/pkg/block"
	"github.com/riftchain/utxonet/pkg/keys"
	"github.com/riftchain/utxonet/pkg/mempool"
	"github.com/riftchain/utxonet/pkg/transaction"
	"github.com/riftchain/utxonet/pkg/types"
	"github.com/riftchain/utxonet/pkg/utxo"
)

func testKey(t *testing.T) *keys.PrivateKey {
	t.Helper()
	sk, err := keys.Generate()
	if err != nil {
		t.Fatalf("keys.Generate: %v", err)
	}
	return sk
}

func TestTickWaitsForEnoughMempoolTransactions(t *testing.T) {
	target, err := block.NewTarget(3, [3]byte{0x00, 0x00, 0x01})
	if err != nil {
		t.Fatalf("NewTarget: %v", err)
	}
	m := New(target)
	mp := mempool.New(1)
	genesis := block.Genesis(target)

	if _, ok := m.Tick(genesis, mp); ok {
		t.Fatalf("Tick should not mine a block while the mempool is empty")
	}
}

func TestTickMinesAgainstAnEasyTarget(t *testing.T) {
	target, err := block.NewTarget(32, [3]byte{0xff, 0xff, 0xff})
	if err != nil {
		t.Fatalf("NewTarget: %v", err)
	}
	m := New(target)
	mp := mempool.New(1)

	sk := testKey(t)
	tx, err := transaction.New([]utxo.Id{{Vout: 1}}, []transaction.Output{{Amount: 1, Owner: sk.Public()}}, sk)
	if err != nil {
		t.Fatalf("transaction.New: %v", err)
	}
	if err := mp.Add(tx); err != nil {
		t.Fatalf("mp.Add: %v", err)
	}

	genesis := block.Genesis(target)
	var mined *block.Block
	for i := 0; i < 64; i++ {
		b, ok := m.Tick(genesis, mp)
		if ok {
			mined = b
			break
		}
	}
	if mined == nil {
		t.Fatalf("expected to mine a block against an easy target within 64 ticks")
	}
	if mined.Height != genesis.Height+1 {
		t.Fatalf("mined block height = %d, want %d", mined.Height, genesis.Height+1)
	}
	if mined.Header.HashPrevBlock != genesis.Id() {
		t.Fatalf("mined block should point at genesis as its parent")
	}
	if !target.Satisfies(mined.Id()) {
		t.Fatalf("mined block should satisfy the target")
	}
}

func TestTickRebuildsOnStaleParent(t *testing.T) {
	target, err := block.NewTarget(3, [3]byte{0x00, 0x00, 0x01})
	if err != nil {
		t.Fatalf("NewTarget: %v", err)
	}
	m := New(target)
	mp := mempool.New(1)
	sk := testKey(t)
	tx, err := transaction.New([]utxo.Id{{Vout: 1}}, []transaction.Output{{Amount: 1, Owner: sk.Public()}}, sk)
	if err != nil {
		t.Fatalf("transaction.New: %v", err)
	}
	if err := mp.Add(tx); err != nil {
		t.Fatalf("mp.Add: %v", err)
	}

	genesis := block.Genesis(target)
	m.Tick(genesis, mp)
	if m.candidate == nil || m.candidate.Header.HashPrevBlock != genesis.Id() {
		t.Fatalf("first Tick should build a candidate on top of genesis")
	}

	other, err := block.New(0, types.Hash{}, target, nil)
	if err != nil {
		t.Fatalf("block.New: %v", err)
	}
	other.Header.Nonce = 999

	m.Tick(other, mp)
	if m.candidate == nil || m.candidate.Header.HashPrevBlock != other.Id() {
		t.Fatalf("Tick against a new top should rebuild the candidate on top of it")
	}
}

func TestDiscardCandidateForcesRebuild(t *testing.T) {
	target, err := block.NewTarget(3, [3]byte{0x00, 0x00, 0x01})
	if err != nil {
		t.Fatalf("NewTarget: %v", err)
	}
	m := New(target)
	mp := mempool.New(1)
	sk := testKey(t)
	tx, err := transaction.New([]utxo.Id{{Vout: 1}}, []transaction.Output{{Amount: 1, Owner: sk.Public()}}, sk)
	if err != nil {
		t.Fatalf("transaction.New: %v", err)
	}
	if err := mp.Add(tx); err != nil {
		t.Fatalf("mp.Add: %v", err)
	}

	genesis := block.Genesis(target)
	m.Tick(genesis, mp)
	m.DiscardCandidate()
	if m.candidate != nil {
		t.Fatalf("DiscardCandidate should clear the in-progress candidate")
	}
}
