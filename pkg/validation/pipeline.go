// Package validation implements the accept/reject decision for incoming
// transactions and blocks, and the state mutation that follows
// acceptance: applying to the UTXO pool, wallet, mempool, and chain,
// including the speculative recalculation a fork-switching block
// requires.
package validation

import (
	"errors"

	"github.com/riftchain/utxonet/pkg/block"
	"github.com/riftchain/utxonet/pkg/blockchain"
	"github.com/riftchain/utxonet/pkg/mempool"
	"github.com/riftchain/utxonet/pkg/mining"
	"github.com/riftchain/utxonet/pkg/pool"
	"github.com/riftchain/utxonet/pkg/transaction"
	"github.com/riftchain/utxonet/pkg/wallet"
)

var (
	// ErrTransactionConflicts is returned when t shares a utxo with a
	// transaction already pending.
	ErrTransactionConflicts = errors.New("transaction conflicts with a pending transaction")
	// ErrTransactionOnChain is returned when t's id already appears on
	// the canonical chain.
	ErrTransactionOnChain = errors.New("transaction already confirmed")

	// ErrBlockKnown is returned when b's id is already stored.
	ErrBlockKnown = errors.New("block already known")
	// ErrBlockTxOnChain is returned when one of b's transactions already
	// appears on the canonical chain.
	ErrBlockTxOnChain = errors.New("block contains an already-confirmed transaction")
	// ErrBlockOrphan is returned when b's parent is not stored.
	ErrBlockOrphan = errors.New("block's parent is unknown")
)

// Pipeline wires together one node's chain, utxo pool, mempool, wallet,
// and miner, and applies the accept/reject rules for gossip messages
// arriving from the network.
type Pipeline struct {
	Chain   *blockchain.Blockchain
	Utxos   *pool.Pool
	Mempool *mempool.Mempool
	Wallet  *wallet.Wallet
	Miner   *mining.Miner
}

// New builds a pipeline over the given components.
func New(chain *blockchain.Blockchain, utxos *pool.Pool, mp *mempool.Mempool, w *wallet.Wallet, m *mining.Miner) *Pipeline {
	return &Pipeline{Chain: chain, Utxos: utxos, Mempool: mp, Wallet: w, Miner: m}
}

// ProcessTransaction runs the acceptance checks for an incoming or
// locally proposed transaction. On success it is added to the mempool
// and the caller should gossip it onward; on failure the returned error
// names which check failed and nothing is mutated.
func (p *Pipeline) ProcessTransaction(t *transaction.Transaction) error {
	if err := t.CheckSelfConsistent(); err != nil {
		return err
	}
	if _, conflicts := p.Mempool.CompatibilityOf(t); conflicts {
		return ErrTransactionConflicts
	}
	if p.Chain.ContainsTx(t.Id(), nil, p.Chain.Top()) {
		return ErrTransactionOnChain
	}
	if err := p.Utxos.CheckUtxosExist(t); err != nil {
		return err
	}
	if err := p.Utxos.CheckBalance(t); err != nil {
		return err
	}
	if err := p.Utxos.Authenticate(t); err != nil {
		return err
	}
	return p.Mempool.Add(t)
}

// ProcessBlock runs the full fork-aware acceptance pipeline for an
// incoming block. On success it returns nil and the chain, pool,
// wallet, mempool, and miner have all been updated to reflect b's
// adoption (or, if b did not overtake the current tip, merely recorded
// as a side branch). On failure nothing is mutated.
func (p *Pipeline) ProcessBlock(b *block.Block) error {
	if p.Chain.Contains(b.Id()) {
		return ErrBlockKnown
	}
	for _, t := range b.Transactions {
		if p.Chain.ContainsTx(t.Id(), nil, p.Chain.Top()) {
			return ErrBlockTxOnChain
		}
	}
	if err := b.CheckStructure(); err != nil {
		return err
	}
	parent, ok := p.Chain.ParentOf(b)
	if b.Height != 0 && !ok {
		return ErrBlockOrphan
	}

	oldTop := p.Chain.Top()
	var toUndo, toApply []*block.Block
	if parent != nil {
		toUndo, toApply = p.Chain.Path(oldTop, parent)
	}

	p.Utxos.Recalculate(toUndo, toApply, p.Chain)
	err := firstErr(p.Utxos.CheckUtxosExistForBlock(b), p.Utxos.CheckSignaturesOf(b))
	p.Utxos.Recalculate(toApply, toUndo, p.Chain)
	if err != nil {
		return err
	}

	if err := p.Chain.Push(b); err != nil {
		return err
	}

	if b.Height <= oldTop.Height {
		return nil
	}

	p.Utxos.Recalculate(toUndo, toApply, p.Chain)
	p.Utxos.ApplyBlock(b)

	p.Wallet.UndoAll(toUndo, p.Chain, p.Utxos)
	p.Wallet.ApplyAll(toApply)
	p.Wallet.ApplyBlock(b)

	p.Mempool.UndoAll(toUndo, p.Chain, p.Utxos)
	p.Mempool.SynchronizeWith(p.Utxos)
	p.Mempool.OnBlockApplied(b)

	p.Miner.DiscardCandidate()
	return nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
