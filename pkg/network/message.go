// Package network provides the point-to-point gossip transport between
// simulated nodes: message framing, a random connected topology, node
// run loops, and the shutdown drain/barrier protocol.
package network

import (
	"fmt"

	"github.com/riftchain/utxonet/pkg/block"
	"github.com/riftchain/utxonet/pkg/transaction"
)

// shutDownSentinel is the literal byte string that stands in for a
// proper message when a node is told to stop.
var shutDownSentinel = []byte("Shut down")

// Kind identifies which payload a decoded Message carries.
type Kind int

const (
	// KindTransaction marks a decoded Message as carrying a transaction.
	KindTransaction Kind = iota
	// KindBlock marks a decoded Message as carrying a block.
	KindBlock
	// KindShutDown marks a decoded Message as the shutdown sentinel.
	KindShutDown
)

// Message is a decoded gossip payload: exactly one of Transaction or
// Block is non-nil unless Kind is KindShutDown.
type Message struct {
	Kind        Kind
	Transaction *transaction.Transaction
	Block       *block.Block
}

// EncodeTransaction serializes t as a gossip message.
func EncodeTransaction(t *transaction.Transaction) []byte {
	return t.Serialize()
}

// EncodeBlock serializes b as a gossip message.
func EncodeBlock(b *block.Block) []byte {
	return b.Serialize()
}

// EncodeShutDown returns the shutdown sentinel message.
func EncodeShutDown() []byte {
	out := make([]byte, len(shutDownSentinel))
	copy(out, shutDownSentinel)
	return out
}

// Decode inspects data's tag and parses it into a Message. The shutdown
// sentinel is checked before the tag byte since it is not itself a
// tagged record.
func Decode(data []byte) (Message, error) {
	if string(data) == string(shutDownSentinel) {
		return Message{Kind: KindShutDown}, nil
	}
	if len(data) == 0 {
		return Message{}, fmt.Errorf("empty message")
	}
	switch data[0] {
	case 't':
		t, _, err := transaction.Deserialize(data)
		if err != nil {
			return Message{}, fmt.Errorf("decode transaction: %w", err)
		}
		return Message{Kind: KindTransaction, Transaction: t}, nil
	case 'b':
		b, _, err := block.Deserialize(data)
		if err != nil {
			return Message{}, fmt.Errorf("decode block: %w", err)
		}
		return Message{Kind: KindBlock, Block: b}, nil
	default:
		return Message{}, fmt.Errorf("unexpected message tag %q", data[0])
	}
}
