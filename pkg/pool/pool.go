// Package pool tracks the set of outputs an honest chain has produced
// but not yet consumed, and validates transactions and blocks against
// it.
package pool

import (
	"errors"
	"sync"

	"github.com/riftchain/utxonet/pkg/block"
	"github.com/riftchain/utxonet/pkg/blockchain"
	"github.com/riftchain/utxonet/pkg/keys"
	"github.com/riftchain/utxonet/pkg/transaction"
	"github.com/riftchain/utxonet/pkg/utxo"
)

var (
	// ErrKnownUtxo is returned by Add when the utxo id is already stored.
	ErrKnownUtxo = errors.New("utxo already known")
	// ErrUnknownUtxo is returned by Remove when the utxo id is not stored.
	ErrUnknownUtxo = errors.New("utxo unknown")
	// ErrUnknownInputUtxo is returned by CheckUtxosExist when a
	// transaction references a utxo that is not in the pool.
	ErrUnknownInputUtxo = errors.New("transaction spends an unknown utxo")
	// ErrBadSignature is returned by Authenticate when an input's
	// signature does not verify against the referenced utxo's owner.
	ErrBadSignature = errors.New("transaction input has an invalid signature")
	// ErrUnbalancedTransaction is returned by CheckBalance when input and
	// output amounts do not match.
	ErrUnbalancedTransaction = errors.New("transaction inputs and outputs are unbalanced")
)

// Pool is a mutex-protected map from utxo id to the data describing it.
type Pool struct {
	mu           sync.RWMutex
	utxos        map[utxo.Id]utxo.Data
	initialUtxos map[utxo.Id]utxo.Data
}

// New seeds a pool with one genesis-assigned balance of amount per key,
// keyed by utxo.ZeroTxid so undo can distinguish them from on-chain
// outputs.
func New(owners []*keys.PublicKey, amount uint32) *Pool {
	utxos := make(map[utxo.Id]utxo.Data, len(owners))
	for i, pk := range owners {
		id := utxo.Id{Txid: utxo.ZeroTxid, Vout: uint64(i)}
		utxos[id] = utxo.Data{Amount: amount, Owner: pk}
	}
	initial := make(map[utxo.Id]utxo.Data, len(utxos))
	for id, data := range utxos {
		initial[id] = data
	}
	return &Pool{utxos: utxos, initialUtxos: initial}
}

// Add inserts u, failing if its id is already stored.
func (p *Pool) Add(u utxo.Utxo) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.utxos[u.Id]; ok {
		return ErrKnownUtxo
	}
	p.utxos[u.Id] = u.Data
	return nil
}

// Remove deletes the utxo identified by id, failing if it is not
// stored.
func (p *Pool) Remove(id utxo.Id) (utxo.Data, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	data, ok := p.utxos[id]
	if !ok {
		return utxo.Data{}, ErrUnknownUtxo
	}
	delete(p.utxos, id)
	return data, nil
}

// Get looks a utxo up by id without removing it.
func (p *Pool) Get(id utxo.Id) (utxo.Data, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	data, ok := p.utxos[id]
	return data, ok
}

// Contains reports whether id is currently unspent.
func (p *Pool) Contains(id utxo.Id) bool {
	_, ok := p.Get(id)
	return ok
}

// OwnedBy returns every utxo currently owned by pk.
func (p *Pool) OwnedBy(pk *keys.PublicKey) []utxo.Utxo {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []utxo.Utxo
	for id, data := range p.utxos {
		if data.Owner.Equal(pk) {
			out = append(out, utxo.New(id, data))
		}
	}
	return out
}

// ApplyTx consumes t's inputs and produces its outputs. Callers must
// have already validated t against this pool (CheckUtxosExist,
// Authenticate) — ApplyTx itself does not re-check.
func (p *Pool) ApplyTx(t *transaction.Transaction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, in := range t.Inputs {
		delete(p.utxos, in.UtxoId)
	}
	for vout, out := range t.Outputs {
		id := utxo.Id{Txid: t.Id(), Vout: uint64(vout)}
		p.utxos[id] = out
	}
}

// ApplyBlock applies every transaction in b, in order.
func (p *Pool) ApplyBlock(b *block.Block) {
	for _, t := range b.Transactions {
		p.ApplyTx(t)
	}
}

// ApplyAll applies a run of blocks, oldest first.
func (p *Pool) ApplyAll(blocks []*block.Block) {
	for _, b := range blocks {
		p.ApplyBlock(b)
	}
}

// UndoTx reverses t's effect: its outputs are removed and its inputs'
// utxos are restored, resolved either from the pool's initial snapshot
// of genesis-assigned balances (when the input's txid is utxo.ZeroTxid)
// or by walking the chain backwards from block. An output that is not in
// the pool breaks the pool's invariants and makes UndoTx panic.
func (p *Pool) UndoTx(t *transaction.Transaction, chain *blockchain.Blockchain, from *block.Block) {
	for vout := range t.Outputs {
		if _, err := p.Remove(utxo.Id{Txid: t.Id(), Vout: uint64(vout)}); err != nil {
			panic(err)
		}
	}

	for _, in := range t.Inputs {
		if in.UtxoId.Txid == utxo.ZeroTxid {
			p.mu.Lock()
			p.utxos[in.UtxoId] = p.initialUtxos[in.UtxoId]
			p.mu.Unlock()
			continue
		}
		restored, ok := chain.GetUtxoFrom(in.UtxoId, from)
		if ok {
			p.mu.Lock()
			p.utxos[in.UtxoId] = restored.Data
			p.mu.Unlock()
		}
	}
}

// UndoBlock reverses every transaction in b, in reverse order.
func (p *Pool) UndoBlock(b *block.Block, chain *blockchain.Blockchain) {
	for i := len(b.Transactions) - 1; i >= 0; i-- {
		p.UndoTx(b.Transactions[i], chain, b)
	}
}

// UndoAll reverses a run of blocks, most recent first.
func (p *Pool) UndoAll(blocks []*block.Block, chain *blockchain.Blockchain) {
	for i := len(blocks) - 1; i >= 0; i-- {
		p.UndoBlock(blocks[i], chain)
	}
}

// Recalculate moves the pool across a reorganisation: undo toUndo (most
// recent first), then apply toApply (oldest first).
func (p *Pool) Recalculate(toUndo, toApply []*block.Block, chain *blockchain.Blockchain) {
	p.UndoAll(toUndo, chain)
	p.ApplyAll(toApply)
}

// CheckUtxosExist reports an error if any of t's inputs references a
// utxo not currently in the pool.
func (p *Pool) CheckUtxosExist(t *transaction.Transaction) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, in := range t.Inputs {
		if _, ok := p.utxos[in.UtxoId]; !ok {
			return ErrUnknownInputUtxo
		}
	}
	return nil
}

// CheckBalance reports an error if the sum of t's input amounts does
// not equal the sum of its output amounts. Inputs must already be known
// to the pool (see CheckUtxosExist).
func (p *Pool) CheckBalance(t *transaction.Transaction) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var in, out uint64
	for _, i := range t.Inputs {
		data, ok := p.utxos[i.UtxoId]
		if !ok {
			return ErrUnknownInputUtxo
		}
		in += uint64(data.Amount)
	}
	for _, o := range t.Outputs {
		out += uint64(o.Amount)
	}
	if in != out {
		return ErrUnbalancedTransaction
	}
	return nil
}

// Authenticate recomputes t's spend-digest and verifies every input's
// signature against the owner recorded for the utxo it references.
// Inputs whose utxo is not (or no longer) in the pool are silently
// skipped — CheckUtxosExist is responsible for rejecting those.
func (p *Pool) Authenticate(t *transaction.Transaction) error {
	digest := t.SpendDigest()
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, in := range t.Inputs {
		data, ok := p.utxos[in.UtxoId]
		if !ok {
			continue
		}
		if !data.Owner.Verify(digest, in.Sig) {
			return ErrBadSignature
		}
	}
	return nil
}

// CheckUtxosExistForBlock applies CheckUtxosExist to every transaction
// in b.
func (p *Pool) CheckUtxosExistForBlock(b *block.Block) error {
	for _, t := range b.Transactions {
		if err := p.CheckUtxosExist(t); err != nil {
			return err
		}
	}
	return nil
}

// CheckSignaturesOf applies Authenticate to every transaction in b.
func (p *Pool) CheckSignaturesOf(b *block.Block) error {
	for _, t := range b.Transactions {
		if err := p.Authenticate(t); err != nil {
			return err
		}
	}
	return nil
}

// Size returns the number of unspent outputs currently tracked.
func (p *Pool) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.utxos)
}

// Equal reports whether p and other track the same set of utxo ids,
// ignoring data — used by tests to compare pools after a round trip
// through apply/undo.
func (p *Pool) Equal(other *Pool) bool {
	p.mu.RLock()
	other.mu.RLock()
	defer p.mu.RUnlock()
	defer other.mu.RUnlock()
	if len(p.utxos) != len(other.utxos) {
		return false
	}
	for id := range p.utxos {
		if _, ok := other.utxos[id]; !ok {
			return false
		}
	}
	return true
}
