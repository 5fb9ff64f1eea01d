// Package mempool holds the transactions a node has heard about and
// accepted but that have not yet been confirmed in a block.
package mempool

import (
	"errors"
	"math/rand"
	"sync"

	"github.com/riftchain/utxonet/pkg/block"
	"github.com/riftchain/utxonet/pkg/blockchain"
	"github.com/riftchain/utxonet/pkg/pool"
	"github.com/riftchain/utxonet/pkg/transaction"
	"github.com/riftchain/utxonet/pkg/types"
)

var (
	// ErrKnownTransaction is returned by Add when the transaction's id is
	// already stored.
	ErrKnownTransaction = errors.New("transaction already known")
	// ErrUnknownTransaction is returned by Remove when the transaction's
	// id is not stored.
	ErrUnknownTransaction = errors.New("transaction unknown")
)

// Mempool is a mutex-protected set of pending transactions, keyed by id.
type Mempool struct {
	mu           sync.RWMutex
	transactions map[types.Hash]*transaction.Transaction
	txsPerBlock  int
}

// New builds an empty mempool. txsPerBlock is the batch size Select
// hands the miner once it has enough pending transactions.
func New(txsPerBlock int) *Mempool {
	return &Mempool{
		transactions: make(map[types.Hash]*transaction.Transaction),
		txsPerBlock:  txsPerBlock,
	}
}

// Size returns the number of pending transactions.
func (m *Mempool) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.transactions)
}

// Add inserts t, failing if its id is already stored.
func (m *Mempool) Add(t *transaction.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transactions[t.Id()]; ok {
		return ErrKnownTransaction
	}
	m.transactions[t.Id()] = t
	return nil
}

// Remove deletes the transaction identified by id.
func (m *Mempool) Remove(id types.Hash) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transactions[id]; !ok {
		return ErrUnknownTransaction
	}
	delete(m.transactions, id)
	return nil
}

// CompatibilityOf reports the id of a pending transaction that shares a
// spent utxo with t, if any. A zero hash means t is compatible with
// everything currently pending.
func (m *Mempool) CompatibilityOf(t *transaction.Transaction) (types.Hash, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, pending := range m.transactions {
		if pending.SharesUtxoWith(t) {
			return pending.Id(), true
		}
	}
	return types.Hash{}, false
}

// Select returns a uniformly random batch of txsPerBlock pending
// transactions, or false if fewer than that many are pending.
func (m *Mempool) Select() ([]*transaction.Transaction, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.transactions) < m.txsPerBlock {
		return nil, false
	}
	all := make([]*transaction.Transaction, 0, len(m.transactions))
	for _, t := range m.transactions {
		all = append(all, t)
	}
	rand.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	return all[:m.txsPerBlock], true
}

// OnBlockApplied drops every pending transaction that shares a spent
// utxo with one of b's transactions — it has either been confirmed or
// conflicts with what just got confirmed.
func (m *Mempool) OnBlockApplied(b *block.Block) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, confirmed := range b.Transactions {
		for id, pending := range m.transactions {
			if pending.SharesUtxoWith(confirmed) {
				delete(m.transactions, id)
			}
		}
	}
}

// OnBlocksApplied applies OnBlockApplied to a run of blocks.
func (m *Mempool) OnBlocksApplied(blocks []*block.Block) {
	for _, b := range blocks {
		m.OnBlockApplied(b)
	}
}

// UndoAll re-enqueues every transaction carried by blocks that a
// reorganisation has undone, best-effort: anything already known, or no
// longer valid against chain/pool, is silently skipped.
func (m *Mempool) UndoAll(blocks []*block.Block, chain *blockchain.Blockchain, utxos *pool.Pool) {
	for i := len(blocks) - 1; i >= 0; i-- {
		for _, t := range blocks[i].Transactions {
			if utxos.CheckUtxosExist(t) != nil {
				continue
			}
			if utxos.Authenticate(t) != nil {
				continue
			}
			m.Add(t)
		}
	}
}

// SynchronizeWith drops any pending transaction that is no longer
// consistent with utxos — its inputs have since been spent or never
// existed on the adopted chain.
func (m *Mempool) SynchronizeWith(utxos *pool.Pool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, t := range m.transactions {
		if utxos.CheckUtxosExist(t) != nil {
			delete(m.transactions, id)
		}
	}
}

// Clear empties the pool.
func (m *Mempool) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions = make(map[types.Hash]*transaction.Transaction)
}

// Equal reports whether m and other hold the same set of transaction
// ids.
func (m *Mempool) Equal(other *Mempool) bool {
	m.mu.RLock()
	other.mu.RLock()
	defer m.mu.RUnlock()
	defer other.mu.RUnlock()
	if len(m.transactions) != len(other.transactions) {
		return false
	}
	for id := range m.transactions {
		if _, ok := other.transactions[id]; !ok {
			return false
		}
	}
	return true
}
