// Package block defines the block header, the proof-of-work target it
// carries, and the block record that bundles a header with the
// transactions it confirms.
package block

import (
	"errors"
	"fmt"

	"github.com/riftchain/utxonet/pkg/crypto"
	"github.com/riftchain/utxonet/pkg/transaction"
	"github.com/riftchain/utxonet/pkg/types"
	"github.com/riftchain/utxonet/pkg/wire"
)

// HeaderLen is the wire size of a BlockHeader: 32-byte previous block
// hash, 32-byte merkle root, 4-byte target, 4-byte nonce.
const HeaderLen = 32 + 32 + TargetLen + 4

var (
	// ErrEmptyNonGenesisBlock is returned when a non-genesis block carries
	// zero transactions.
	ErrEmptyNonGenesisBlock = errors.New("block has no transactions")
	// ErrTxCountNotPowerOfTwo is returned when a block's transaction count
	// is not a power of two, which the merkle tree construction requires.
	ErrTxCountNotPowerOfTwo = errors.New("transaction count is not a power of two")
	// ErrDuplicateUtxoAcrossTxs is returned when two transactions in the
	// same block spend the same utxo.
	ErrDuplicateUtxoAcrossTxs = errors.New("two transactions in the block spend the same utxo")
)

// BlockHeader is the fixed-size summary of a block that proof-of-work
// authenticates.
type BlockHeader struct {
	HashPrevBlock  types.Hash
	HashMerkleRoot types.Hash
	Target         Target
	Nonce          uint32
}

// Serialize encodes the header as its fixed 72-byte wire record.
func (h BlockHeader) Serialize() []byte {
	buf := make([]byte, HeaderLen)
	wire.PutHash(buf, h.HashPrevBlock)
	wire.PutHash(buf[32:], h.HashMerkleRoot)
	copy(buf[64:68], h.Target.Serialize())
	wire.PutUint32(buf[68:], h.Nonce)
	return buf
}

// DeserializeHeader decodes a 72-byte wire record into a BlockHeader.
func DeserializeHeader(data []byte) (BlockHeader, error) {
	if err := wire.Require(data, HeaderLen, "block header"); err != nil {
		return BlockHeader{}, err
	}
	target, err := DeserializeTarget(data[64:68])
	if err != nil {
		return BlockHeader{}, err
	}
	return BlockHeader{
		HashPrevBlock:  wire.Hash(data),
		HashMerkleRoot: wire.Hash(data[32:]),
		Target:         target,
		Nonce:          wire.Uint32(data[68:]),
	}, nil
}

// Id is the block's proof-of-work identity: the double-SHA256 of its
// header record.
func (h BlockHeader) Id() types.Hash {
	return crypto.DoubleSha256(h.Serialize())
}

// Block pairs a header with the transactions whose ids its merkle root
// commits to.
type Block struct {
	Height       uint64
	Header       BlockHeader
	Transactions []*transaction.Transaction
}

// Genesis builds the fixed genesis block: height zero, an all-zero
// previous hash, no transactions, and the sentinel empty merkle root.
func Genesis(target Target) *Block {
	return &Block{
		Height: 0,
		Header: BlockHeader{
			HashPrevBlock:  types.Hash{},
			HashMerkleRoot: crypto.EmptyMerkleRoot,
			Target:         target,
			Nonce:          0,
		},
		Transactions: nil,
	}
}

// New builds a candidate block over txs on top of parent, computing the
// merkle root but leaving the nonce at zero for the miner to search.
func New(height uint64, prev types.Hash, target Target, txs []*transaction.Transaction) (*Block, error) {
	b := &Block{
		Height: height,
		Header: BlockHeader{
			HashPrevBlock:  prev,
			HashMerkleRoot: merkleRootOf(txs),
			Target:         target,
		},
		Transactions: txs,
	}
	if height > 0 {
		if err := b.CheckStructure(); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func merkleRootOf(txs []*transaction.Transaction) types.Hash {
	ids := make([]types.Hash, len(txs))
	for i, t := range txs {
		ids[i] = t.Id()
	}
	return crypto.MerkleRoot(ids)
}

// CheckStructure enforces the non-genesis block invariants: at least one
// transaction, a power-of-two transaction count (the merkle tree
// construction duplicates trailing leaves to reach one, but the count
// itself must already be a power of two per spec), and no utxo spent by
// two transactions in the same block.
func (b *Block) CheckStructure() error {
	n := len(b.Transactions)
	if n == 0 {
		return ErrEmptyNonGenesisBlock
	}
	if n&(n-1) != 0 {
		return ErrTxCountNotPowerOfTwo
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if b.Transactions[i].SharesUtxoWith(b.Transactions[j]) {
				return ErrDuplicateUtxoAcrossTxs
			}
		}
	}
	return nil
}

// Id returns the block's proof-of-work identity.
func (b *Block) Id() types.Hash {
	return b.Header.Id()
}

// Serialize encodes the full block record (spec §6: tag 'b', 8-byte
// height, 8-byte transaction count, header, transaction records).
func (b *Block) Serialize() []byte {
	head := make([]byte, 1+8+8)
	head[0] = 'b'
	wire.PutUint64(head[1:], b.Height)
	wire.PutUint64(head[9:], uint64(len(b.Transactions)))
	buf := append(head, b.Header.Serialize()...)
	for _, t := range b.Transactions {
		buf = append(buf, t.Serialize()...)
	}
	return buf
}

// Deserialize decodes a block record, including its leading tag byte.
// It returns the block and the number of bytes consumed.
func Deserialize(data []byte) (*Block, int, error) {
	const headLen = 1 + 8 + 8
	if err := wire.Require(data, headLen, "block header prefix"); err != nil {
		return nil, 0, err
	}
	if data[0] != 'b' {
		return nil, 0, fmt.Errorf("unexpected block tag %q", data[0])
	}
	height := wire.Uint64(data[1:])
	txCount := wire.Uint64(data[9:])

	offset := headLen
	if err := wire.Require(data, offset+HeaderLen, "block header"); err != nil {
		return nil, 0, err
	}
	header, err := DeserializeHeader(data[offset:])
	if err != nil {
		return nil, 0, err
	}
	offset += HeaderLen

	txs := make([]*transaction.Transaction, txCount)
	for i := range txs {
		t, n, err := transaction.Deserialize(data[offset:])
		if err != nil {
			return nil, 0, fmt.Errorf("transaction %d: %w", i, err)
		}
		txs[i] = t
		offset += n
	}

	return &Block{Height: height, Header: header, Transactions: txs}, offset, nil
}
