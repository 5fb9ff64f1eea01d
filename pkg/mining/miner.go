// Package mining builds and searches candidate blocks against a
// proof-of-work target.
package mining

import (
	"github.com/riftchain/utxonet/pkg/block"
	"github.com/riftchain/utxonet/pkg/mempool"
)

// Miner holds at most one candidate block and advances its nonce one
// tick at a time.
type Miner struct {
	target    block.Target
	candidate *block.Block
}

// New builds a miner that searches for blocks satisfying target.
func New(target block.Target) *Miner {
	return &Miner{target: target}
}

// Tick runs one iteration of the mining loop: if there is no candidate,
// or its parent is no longer the chain top, it asks the mempool for a
// fresh batch and rebuilds; otherwise it checks whether the current
// candidate already satisfies the target and, if not, increments the
// nonce for the next tick. It returns the mined block when proof-of-work
// succeeds.
func (m *Miner) Tick(top *block.Block, pool *mempool.Mempool) (*block.Block, bool) {
	if m.candidate == nil || m.candidate.Header.HashPrevBlock != top.Id() {
		m.rebuild(top, pool)
	}
	if m.candidate == nil {
		return nil, false
	}
	if m.target.Satisfies(m.candidate.Id()) {
		found := m.candidate
		m.candidate = nil
		return found, true
	}
	m.candidate.Header.Nonce++
	return nil, false
}

func (m *Miner) rebuild(top *block.Block, pool *mempool.Mempool) {
	batch, ok := pool.Select()
	if !ok {
		m.candidate = nil
		return
	}
	candidate, err := block.New(top.Height+1, top.Id(), m.target, batch)
	if err != nil {
		m.candidate = nil
		return
	}
	m.candidate = candidate
}

// DiscardCandidate drops the current candidate, so a stale parent does
// not keep getting mined on once a competing block has been adopted.
func (m *Miner) DiscardCandidate() {
	m.candidate = nil
}
