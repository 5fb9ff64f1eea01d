package transaction

import (
	"testing"

	"github.com/riftchain/utxonet/pkg/keys"
	"github.com/riftchain/utxonet/pkg/types"
	"github.com/riftchain/utxonet/pkg/utxo"
)

func mustKey(t *testing.T) *keys.PrivateKey {
	t.Helper()
	sk, err := keys.Generate()
	if err != nil {
		t.Fatalf("keys.Generate: %v", err)
	}
	return sk
}

func TestNewSignsEveryInput(t *testing.T) {
	sk := mustKey(t)
	pk := sk.Public()

	ids := []utxo.Id{
		{Txid: types.Hash{1}, Vout: 0},
		{Txid: types.Hash{2}, Vout: 1},
	}
	outputs := []Output{{Amount: 10, Owner: pk}}

	tx, err := New(ids, outputs, sk)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(tx.Inputs) != len(ids) {
		t.Fatalf("got %d inputs, want %d", len(tx.Inputs), len(ids))
	}
	digest := tx.SpendDigest()
	for i, in := range tx.Inputs {
		if !pk.Verify(digest, in.Sig) {
			t.Fatalf("input %d signature does not verify", i)
		}
	}
}

func TestNewRejectsEmptyInputsOrOutputs(t *testing.T) {
	sk := mustKey(t)
	pk := sk.Public()
	ids := []utxo.Id{{Txid: types.Hash{1}, Vout: 0}}
	outputs := []Output{{Amount: 1, Owner: pk}}

	if _, err := New(nil, outputs, sk); err != ErrNoInputs {
		t.Fatalf("New with no inputs: got %v, want ErrNoInputs", err)
	}
	if _, err := New(ids, nil, sk); err != ErrNoOutputs {
		t.Fatalf("New with no outputs: got %v, want ErrNoOutputs", err)
	}
}

func TestCheckSelfConsistentRejectsDoubleSpend(t *testing.T) {
	sk := mustKey(t)
	pk := sk.Public()
	id := utxo.Id{Txid: types.Hash{1}, Vout: 0}
	tx, err := New([]utxo.Id{id, id}, []Output{{Amount: 1, Owner: pk}}, sk)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := tx.CheckSelfConsistent(); err != ErrDoubleSpending {
		t.Fatalf("CheckSelfConsistent = %v, want ErrDoubleSpending", err)
	}
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	sk := mustKey(t)
	pk := sk.Public()
	ids := []utxo.Id{{Txid: types.Hash{9}, Vout: 3}}
	outputs := []Output{{Amount: 42, Owner: pk}, {Amount: 8, Owner: pk}}

	tx, err := New(ids, outputs, sk)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	data := tx.Serialize()
	got, n, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if n != len(data) {
		t.Fatalf("Deserialize consumed %d bytes, want %d", n, len(data))
	}
	if got.Id() != tx.Id() {
		t.Fatalf("round trip changed the transaction id")
	}
	if len(got.Inputs) != len(tx.Inputs) || len(got.Outputs) != len(tx.Outputs) {
		t.Fatalf("round trip changed input/output counts")
	}
}

func TestSharesUtxoWith(t *testing.T) {
	sk := mustKey(t)
	pk := sk.Public()
	shared := utxo.Id{Txid: types.Hash{5}, Vout: 0}
	other := utxo.Id{Txid: types.Hash{6}, Vout: 0}

	t1, err := New([]utxo.Id{shared}, []Output{{Amount: 1, Owner: pk}}, sk)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t2, err := New([]utxo.Id{shared, other}, []Output{{Amount: 1, Owner: pk}}, sk)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t3, err := New([]utxo.Id{other}, []Output{{Amount: 1, Owner: pk}}, sk)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if !t1.SharesUtxoWith(t2) {
		t.Fatalf("t1 and t2 share utxo %v, expected SharesUtxoWith to be true", shared)
	}
	if t1.SharesUtxoWith(t3) {
		t.Fatalf("t1 and t3 share no utxo, expected SharesUtxoWith to be false")
	}
}
