// Package blockchain keeps every block a node has received, indexed by
// id, and tracks which one sits at the head of the heaviest chain.
package blockchain

import (
	"errors"

	"github.com/riftchain/utxonet/pkg/block"
	"github.com/riftchain/utxonet/pkg/types"
	"github.com/riftchain/utxonet/pkg/utxo"
)

var (
	// ErrKnownBlock is returned by Push when the block's id is already
	// stored.
	ErrKnownBlock = errors.New("block already known")
	// ErrOrphanBlock is returned by Push when the block's claimed parent
	// is not stored.
	ErrOrphanBlock = errors.New("block's parent is unknown")
)

// Blockchain is the set of every block a node has accepted, plus a
// pointer at the tip of its current best chain.
type Blockchain struct {
	chain   map[types.Hash]*block.Block
	topHash types.Hash
}

// New builds a chain containing only the fixed genesis block.
func New(genesisTarget block.Target) *Blockchain {
	genesis := block.Genesis(genesisTarget)
	top := genesis.Id()
	return &Blockchain{
		chain:   map[types.Hash]*block.Block{top: genesis},
		topHash: top,
	}
}

// Push inserts b. The chain's top only moves to b if b's height strictly
// exceeds the current top's height — ties keep the incumbent, so the
// first block seen at a given height wins.
func (bc *Blockchain) Push(b *block.Block) error {
	id := b.Id()
	if _, ok := bc.chain[id]; ok {
		return ErrKnownBlock
	}
	if _, ok := bc.chain[b.Header.HashPrevBlock]; !ok && b.Height != 0 {
		return ErrOrphanBlock
	}
	if b.Height > bc.Height() {
		bc.topHash = id
	}
	bc.chain[id] = b
	return nil
}

// Get looks a block up by id.
func (bc *Blockchain) Get(id types.Hash) (*block.Block, bool) {
	b, ok := bc.chain[id]
	return b, ok
}

// Contains reports whether id is stored.
func (bc *Blockchain) Contains(id types.Hash) bool {
	_, ok := bc.chain[id]
	return ok
}

// ParentOf returns the stored block referenced by b's HashPrevBlock.
// Genesis (height 0) has none.
func (bc *Blockchain) ParentOf(b *block.Block) (*block.Block, bool) {
	if b.Height == 0 {
		return nil, false
	}
	p, ok := bc.chain[b.Header.HashPrevBlock]
	return p, ok
}

// CommonAncestor walks both chains back in lock-step, descending the
// taller side first on a height mismatch, until they meet.
func (bc *Blockchain) CommonAncestor(a, b *block.Block) *block.Block {
	for a.Id() != b.Id() {
		switch {
		case a.Height > b.Height:
			p, ok := bc.ParentOf(a)
			if !ok {
				return a
			}
			a = p
		case b.Height > a.Height:
			p, ok := bc.ParentOf(b)
			if !ok {
				return b
			}
			b = p
		default:
			pa, okA := bc.ParentOf(a)
			pb, okB := bc.ParentOf(b)
			if !okA || !okB {
				return a
			}
			a, b = pa, pb
		}
	}
	return a
}

// Path returns, for a reorganisation from oldTop to newTop, the blocks
// that must be undone (oldTop down to but excluding the common ancestor,
// oldest first) and the blocks that must be applied (common ancestor's
// child down to newTop, oldest first).
func (bc *Blockchain) Path(oldTop, newTop *block.Block) (toUndo, toApply []*block.Block) {
	ancestor := bc.CommonAncestor(oldTop, newTop)

	for cur := oldTop; cur.Id() != ancestor.Id(); {
		toUndo = append(toUndo, cur)
		p, ok := bc.ParentOf(cur)
		if !ok {
			break
		}
		cur = p
	}

	for cur := newTop; cur.Id() != ancestor.Id(); {
		toApply = append(toApply, cur)
		p, ok := bc.ParentOf(cur)
		if !ok {
			break
		}
		cur = p
	}
	reverse(toUndo)
	reverse(toApply)
	return toUndo, toApply
}

func reverse(blocks []*block.Block) {
	for i, j := 0, len(blocks)-1; i < j; i, j = i+1, j-1 {
		blocks[i], blocks[j] = blocks[j], blocks[i]
	}
}

// ContainsTx reports whether any block between start (exclusive) and end
// (inclusive), walking end's ancestry, carries a transaction with id
// txid. A nil start walks all the way back to genesis.
func (bc *Blockchain) ContainsTx(txid types.Hash, start, end *block.Block) bool {
	for cur := end; ; {
		if start != nil && cur.Id() == start.Id() {
			return false
		}
		for _, t := range cur.Transactions {
			if t.Id() == txid {
				return true
			}
		}
		p, ok := bc.ParentOf(cur)
		if !ok {
			return false
		}
		cur = p
	}
}

// GetUtxoFrom walks from block backwards through the chain, looking for
// the transaction output that produced id. It does not consult the
// pool's genesis-assigned balances (utxo.ZeroTxid) — those live outside
// any block and are resolved by the pool itself.
func (bc *Blockchain) GetUtxoFrom(id utxo.Id, from *block.Block) (utxo.Utxo, bool) {
	for cur := from; cur != nil; {
		for _, t := range cur.Transactions {
			if t.Id() == id.Txid {
				if int(id.Vout) < len(t.Outputs) {
					return utxo.New(id, t.Outputs[id.Vout]), true
				}
			}
		}
		p, ok := bc.ParentOf(cur)
		if !ok {
			break
		}
		cur = p
	}
	return utxo.Utxo{}, false
}

// Top returns the block at the head of the current best chain.
func (bc *Blockchain) Top() *block.Block {
	return bc.chain[bc.topHash]
}

// TopHash returns the id of the block at the head of the current best
// chain.
func (bc *Blockchain) TopHash() types.Hash {
	return bc.topHash
}

// Height returns the height of the current best chain's tip.
func (bc *Blockchain) Height() uint64 {
	return bc.Top().Height
}

// Len returns the number of blocks from genesis to the tip, inclusive.
func (bc *Blockchain) Len() uint64 {
	return bc.Height() + 1
}

// Size returns the total number of distinct blocks stored, including
// any that have been superseded by a longer competing chain.
func (bc *Blockchain) Size() int {
	return len(bc.chain)
}
