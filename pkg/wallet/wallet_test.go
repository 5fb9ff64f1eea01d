package wallet

import (
	"testing"

	"github.com/riftchain/utxonet/pkg/block"
	"github.com/riftchain/utxonet/pkg/blockchain"
	"github.com/riftchain/utxonet/pkg/keys"
	"github.com/riftchain/utxonet/pkg/pool"
	"github.com/riftchain/utxonet/pkg/utxo"
)

func testTarget(t *testing.T) block.Target {
	t.Helper()
	target, err := block.NewTarget(3, [3]byte{0xff, 0xff, 0xff})
	if err != nil {
		t.Fatalf("NewTarget: %v", err)
	}
	return target
}

func testKey(t *testing.T) *keys.PrivateKey {
	t.Helper()
	sk, err := keys.Generate()
	if err != nil {
		t.Fatalf("keys.Generate: %v", err)
	}
	return sk
}

func TestInitiateNeverFiresAtZeroSpendProbability(t *testing.T) {
	alice := testKey(t)
	bob := testKey(t)
	seed := []utxo.Utxo{{Id: utxo.Id{Vout: 1}, Data: utxo.Data{Amount: 10, Owner: alice.Public()}}}
	w := New(alice.Public(), alice, []*keys.PublicKey{bob.Public()}, seed, 0.0)

	for i := 0; i < 50; i++ {
		if _, ok := w.Initiate(); ok {
			t.Fatalf("Initiate fired with spendProba 0")
		}
	}
}

func TestInitiateAlwaysFiresAtFullSpendProbability(t *testing.T) {
	alice := testKey(t)
	bob := testKey(t)
	seed := []utxo.Utxo{
		{Id: utxo.Id{Vout: 1}, Data: utxo.Data{Amount: 10, Owner: alice.Public()}},
		{Id: utxo.Id{Vout: 2}, Data: utxo.Data{Amount: 5, Owner: alice.Public()}},
	}
	w := New(alice.Public(), alice, []*keys.PublicKey{bob.Public()}, seed, 1.0)

	tx, ok := w.Initiate()
	if !ok {
		t.Fatalf("Initiate should fire with spendProba 1")
	}
	var inAmount, outAmount uint64
	owned := map[utxo.Id]utxo.Data{}
	for _, u := range seed {
		owned[u.Id] = u.Data
	}
	for _, in := range tx.Inputs {
		data, ok := owned[in.UtxoId]
		if !ok {
			t.Fatalf("Initiate spent a utxo the wallet never held: %+v", in.UtxoId)
		}
		inAmount += uint64(data.Amount)
	}
	for _, out := range tx.Outputs {
		outAmount += uint64(out.Amount)
	}
	if inAmount != outAmount {
		t.Fatalf("Initiate produced an unbalanced transaction: in=%d out=%d", inAmount, outAmount)
	}
}

func TestDoubleSpendNeedsAtLeastTwoRecipients(t *testing.T) {
	alice := testKey(t)
	bob := testKey(t)
	seed := []utxo.Utxo{{Id: utxo.Id{Vout: 1}, Data: utxo.Data{Amount: 10, Owner: alice.Public()}}}
	w := New(alice.Public(), alice, []*keys.PublicKey{bob.Public()}, seed, 1.0)
	if _, _, ok := w.DoubleSpend(); ok {
		t.Fatalf("DoubleSpend should refuse to fire with only one recipient")
	}
}

func TestDoubleSpendProducesTwoConflictingSpendsOfTheSameUtxo(t *testing.T) {
	alice := testKey(t)
	bob := testKey(t)
	carol := testKey(t)
	seed := []utxo.Utxo{{Id: utxo.Id{Vout: 1}, Data: utxo.Data{Amount: 10, Owner: alice.Public()}}}
	w := New(alice.Public(), alice, []*keys.PublicKey{bob.Public(), carol.Public()}, seed, 1.0)

	t1, t2, ok := w.DoubleSpend()
	if !ok {
		t.Fatalf("DoubleSpend should fire with spendProba 1 and two recipients")
	}
	if !t1.SharesUtxoWith(t2) {
		t.Fatalf("the two proposed transactions should spend the same utxo")
	}
	if t1.Id() == t2.Id() {
		t.Fatalf("DoubleSpend should propose two distinct transactions")
	}
	if t1.Outputs[0].Owner.Equal(t2.Outputs[0].Owner) {
		t.Fatalf("DoubleSpend should pay two distinct recipients")
	}
}

func TestApplyTxThenUndoTxIsIdentity(t *testing.T) {
	alice := testKey(t)
	bob := testKey(t)
	seed := []utxo.Utxo{{Id: utxo.Id{Vout: 0}, Data: utxo.Data{Amount: 10, Owner: alice.Public()}}}
	w := New(alice.Public(), alice, []*keys.PublicKey{bob.Public()}, seed, 1.0)

	tx, ok := w.Initiate()
	if !ok {
		t.Fatalf("Initiate should have fired")
	}
	before := len(w.Utxos())

	w.ApplyTx(tx)

	target := testTarget(t)
	chain := blockchain.New(target)
	p := pool.New([]*keys.PublicKey{alice.Public(), bob.Public()}, 10)
	w.UndoTx(tx, chain, p)

	if len(w.Utxos()) != before {
		t.Fatalf("undo should restore the wallet to its pre-spend utxo count: got %d, want %d", len(w.Utxos()), before)
	}
}
