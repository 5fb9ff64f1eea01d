// Package wallet tracks one key's spendable balance and proposes
// transactions against it.
package wallet

import (
	"errors"
	"math/rand"
	"sync"

	"github.com/riftchain/utxonet/pkg/block"
	"github.com/riftchain/utxonet/pkg/blockchain"
	"github.com/riftchain/utxonet/pkg/keys"
	"github.com/riftchain/utxonet/pkg/pool"
	"github.com/riftchain/utxonet/pkg/transaction"
	"github.com/riftchain/utxonet/pkg/utxo"
)

var (
	// ErrWrongOwner is returned by Add when a utxo does not belong to
	// this wallet's public key.
	ErrWrongOwner = errors.New("utxo does not belong to this wallet")
	// ErrKnownUtxo is returned by Add when the utxo id is already held.
	ErrKnownUtxo = errors.New("utxo already known")
	// ErrUnknownUtxo is returned by Remove when the utxo id is not held.
	ErrUnknownUtxo = errors.New("utxo unknown")
)

// Wallet holds one node's keypair, the set of peers it may pay, and the
// utxos it currently owns.
type Wallet struct {
	mu         sync.RWMutex
	pub        *keys.PublicKey
	priv       *keys.PrivateKey
	recipients []*keys.PublicKey
	utxos      map[utxo.Id]utxo.Data
	spendProba float64
}

// New builds a wallet for (pub, priv) that may pay to any key in
// recipients, seeded with the utxos it already owns. spendProba is the
// per-tick probability of Initiate/DoubleSpend proposing a transaction.
func New(pub *keys.PublicKey, priv *keys.PrivateKey, recipients []*keys.PublicKey, seed []utxo.Utxo, spendProba float64) *Wallet {
	m := make(map[utxo.Id]utxo.Data, len(seed))
	for _, u := range seed {
		m[u.Id] = u.Data
	}
	return &Wallet{
		pub:        pub,
		priv:       priv,
		recipients: recipients,
		utxos:      m,
		spendProba: spendProba,
	}
}

// PublicKey returns the wallet's own key.
func (w *Wallet) PublicKey() *keys.PublicKey {
	return w.pub
}

// Add records u as owned, failing if it belongs to another key or is
// already held.
func (w *Wallet) Add(u utxo.Utxo) error {
	if !u.Data.Owner.Equal(w.pub) {
		return ErrWrongOwner
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.utxos[u.Id]; ok {
		return ErrKnownUtxo
	}
	w.utxos[u.Id] = u.Data
	return nil
}

// Remove deletes id from the held set.
func (w *Wallet) Remove(id utxo.Id) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.utxos[id]; !ok {
		return ErrUnknownUtxo
	}
	delete(w.utxos, id)
	return nil
}

// Utxos returns a snapshot of every utxo the wallet currently owns.
func (w *Wallet) Utxos() []utxo.Utxo {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]utxo.Utxo, 0, len(w.utxos))
	for id, data := range w.utxos {
		out = append(out, utxo.New(id, data))
	}
	return out
}

// Initiate proposes a spend of a random non-empty subset of the
// wallet's utxos, split into a random number of outputs paid to random
// recipients, gated by spendProba. It returns false when nothing was
// proposed this tick.
func (w *Wallet) Initiate() (*transaction.Transaction, bool) {
	owned := w.Utxos()
	if len(owned) == 0 || len(w.recipients) == 0 {
		return nil, false
	}
	if rand.Float64() >= w.spendProba {
		return nil, false
	}

	n := 1 + rand.Intn(len(owned))
	rand.Shuffle(len(owned), func(i, j int) { owned[i], owned[j] = owned[j], owned[i] })
	chosen := owned[:n]

	ids := make([]utxo.Id, n)
	var amount uint32
	for i, u := range chosen {
		ids[i] = u.Id
		amount += u.Data.Amount
	}

	var outputs []transaction.Output
	remaining := amount
	for remaining > 0 {
		share := uint32(1 + rand.Intn(int(remaining)))
		recipient := w.recipients[rand.Intn(len(w.recipients))]
		outputs = append(outputs, transaction.Output{Amount: share, Owner: recipient})
		remaining -= share
	}

	t, err := transaction.New(ids, outputs, w.priv)
	if err != nil {
		return nil, false
	}
	return t, true
}

// DoubleSpend proposes two conflicting transactions spending the same
// single utxo to two distinct recipients, gated by spendProba.
func (w *Wallet) DoubleSpend() (*transaction.Transaction, *transaction.Transaction, bool) {
	owned := w.Utxos()
	if len(owned) == 0 || len(w.recipients) < 2 {
		return nil, nil, false
	}
	if rand.Float64() >= w.spendProba {
		return nil, nil, false
	}

	u := owned[rand.Intn(len(owned))]
	ids := []utxo.Id{u.Id}

	perm := rand.Perm(len(w.recipients))
	r1, r2 := w.recipients[perm[0]], w.recipients[perm[1]]

	t1, err := transaction.New(ids, []transaction.Output{{Amount: u.Data.Amount, Owner: r1}}, w.priv)
	if err != nil {
		return nil, nil, false
	}
	t2, err := transaction.New(ids, []transaction.Output{{Amount: u.Data.Amount, Owner: r2}}, w.priv)
	if err != nil {
		return nil, nil, false
	}
	return t1, t2, true
}

// ApplyTx removes any owned input t spends and adds any output t pays
// to this wallet's key.
func (w *Wallet) ApplyTx(t *transaction.Transaction) {
	for _, in := range t.Inputs {
		w.Remove(in.UtxoId)
	}
	for vout, out := range t.Outputs {
		if !out.Owner.Equal(w.pub) {
			continue
		}
		w.Add(utxo.New(utxo.Id{Txid: t.Id(), Vout: uint64(vout)}, out))
	}
}

// ApplyBlock applies every transaction in b.
func (w *Wallet) ApplyBlock(b *block.Block) {
	for _, t := range b.Transactions {
		w.ApplyTx(t)
	}
}

// ApplyAll applies a run of blocks, oldest first.
func (w *Wallet) ApplyAll(blocks []*block.Block) {
	for _, b := range blocks {
		w.ApplyBlock(b)
	}
}

// UndoTx reverses t's effect on this wallet: any output it paid to this
// wallet is removed, and any input it spent from this wallet is
// restored: an input whose txid is utxo.ZeroTxid is looked up in utxos,
// any other is found by walking chain back from its top.
func (w *Wallet) UndoTx(t *transaction.Transaction, chain *blockchain.Blockchain, utxos *pool.Pool) {
	for vout, out := range t.Outputs {
		if !out.Owner.Equal(w.pub) {
			continue
		}
		w.Remove(utxo.Id{Txid: t.Id(), Vout: uint64(vout)})
	}

	for _, in := range t.Inputs {
		var restored utxo.Utxo
		var ok bool
		if in.UtxoId.Txid == utxo.ZeroTxid {
			var data utxo.Data
			data, ok = utxos.Get(in.UtxoId)
			restored = utxo.New(in.UtxoId, data)
		} else {
			restored, ok = chain.GetUtxoFrom(in.UtxoId, chain.Top())
		}
		if ok && restored.Data.Owner.Equal(w.pub) {
			w.Add(restored)
		}
	}
}

// UndoBlock reverses every transaction in b, in reverse order.
func (w *Wallet) UndoBlock(b *block.Block, chain *blockchain.Blockchain, utxos *pool.Pool) {
	for i := len(b.Transactions) - 1; i >= 0; i-- {
		w.UndoTx(b.Transactions[i], chain, utxos)
	}
}

// UndoAll reverses a run of blocks, most recent first.
func (w *Wallet) UndoAll(blocks []*block.Block, chain *blockchain.Blockchain, utxos *pool.Pool) {
	for i := len(blocks) - 1; i >= 0; i-- {
		w.UndoBlock(blocks[i], chain, utxos)
	}
}
