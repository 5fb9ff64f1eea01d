package network

import (
	"math/rand"
	"strconv"

	"github.com/riftchain/utxonet/pkg/blockchain"
	"github.com/riftchain/utxonet/pkg/keys"
	"github.com/riftchain/utxonet/pkg/log"
	"github.com/riftchain/utxonet/pkg/mempool"
	"github.com/riftchain/utxonet/pkg/metrics"
	"github.com/riftchain/utxonet/pkg/mining"
	"github.com/riftchain/utxonet/pkg/pool"
	"github.com/riftchain/utxonet/pkg/validation"
	"github.com/riftchain/utxonet/pkg/wallet"
	"github.com/rs/zerolog"
)

// Node runs one participant's cooperative loop: propose a transaction,
// attempt to mine, drain one inbound message, and (if malicious)
// attempt a double spend — all on a single goroutine, so none of the
// node's own state needs a lock.
type Node struct {
	Id         int
	PublicKey  *keys.PublicKey
	privateKey *keys.PrivateKey
	in         <-chan []byte
	neighbours []Neighbour
	malicious  bool

	Chain   *blockchain.Blockchain
	Utxos   *pool.Pool
	Mempool *mempool.Mempool
	Wallet  *wallet.Wallet
	Miner   *mining.Miner

	pipeline *validation.Pipeline
	sync     *Synchronizer
	log      zerolog.Logger
}

// NewNode builds a node over already-constructed components, wiring
// them into a validation pipeline.
func NewNode(id int, pub *keys.PublicKey, priv *keys.PrivateKey, in <-chan []byte, neighbours []Neighbour, malicious bool, chain *blockchain.Blockchain, utxos *pool.Pool, mp *mempool.Mempool, w *wallet.Wallet, m *mining.Miner, sync *Synchronizer) *Node {
	return &Node{
		Id:         id,
		PublicKey:  pub,
		privateKey: priv,
		in:         in,
		neighbours: neighbours,
		malicious:  malicious,
		Chain:      chain,
		Utxos:      utxos,
		Mempool:    mp,
		Wallet:     w,
		Miner:      m,
		pipeline:   validation.New(chain, utxos, mp, w, m),
		sync:       sync,
		log:        log.WithNode(id),
	}
}

// Run executes the node's cooperative loop until a shutdown message is
// drained from its inbound channel.
func (n *Node) Run() {
	for {
		n.tryInitiate()
		n.tryMine()

		select {
		case msg, ok := <-n.in:
			if !ok {
				return
			}
			if n.handle(msg) {
				n.shutDown()
				return
			}
		default:
		}

		if n.malicious {
			n.tryDoubleSpend()
		}
	}
}

func (n *Node) tryInitiate() {
	t, ok := n.Wallet.Initiate()
	if !ok {
		return
	}
	if err := n.pipeline.ProcessTransaction(t); err != nil {
		return
	}
	n.log.Info().Str("txid", t.Id().String()).Msg("new transaction")
	n.reportPoolSizes()
	n.propagate(EncodeTransaction(t))
}

func (n *Node) tryMine() {
	mined, ok := n.Miner.Tick(n.Chain.Top(), n.Mempool)
	if !ok {
		return
	}
	if n.Chain.Contains(mined.Id()) {
		return
	}
	n.Utxos.ApplyBlock(mined)
	n.Wallet.ApplyBlock(mined)
	n.Mempool.OnBlockApplied(mined)
	if err := n.Chain.Push(mined); err != nil {
		return
	}
	n.log.Info().Str("blockid", mined.Id().String()).Uint64("height", mined.Height).Msg("new block")
	metrics.BlocksMinedTotal.WithLabelValues(n.label()).Inc()
	metrics.ChainHeight.WithLabelValues(n.label()).Set(float64(n.Chain.Height()))
	n.propagate(EncodeBlock(mined))
}

// handle decodes one inbound message and applies it. It returns true
// when the message was the shutdown sentinel.
func (n *Node) handle(data []byte) bool {
	msg, err := Decode(data)
	if err != nil {
		return false
	}
	switch msg.Kind {
	case KindShutDown:
		return true
	case KindTransaction:
		if err := n.pipeline.ProcessTransaction(msg.Transaction); err == nil {
			n.log.Info().Str("txid", msg.Transaction.Id().String()).Msg("received transaction")
			metrics.TransactionsAcceptedTotal.WithLabelValues(n.label()).Inc()
			n.propagate(data)
		}
	case KindBlock:
		beforeHeight := n.Chain.Height()
		beforeTop := n.Chain.TopHash()
		if err := n.pipeline.ProcessBlock(msg.Block); err == nil {
			n.log.Info().Str("blockid", msg.Block.Id().String()).Uint64("height", msg.Block.Height).Msg("received block")
			metrics.BlocksAcceptedTotal.WithLabelValues(n.label()).Inc()
			if n.Chain.Height() > beforeHeight {
				metrics.ChainHeight.WithLabelValues(n.label()).Set(float64(n.Chain.Height()))
				if msg.Block.Header.HashPrevBlock != beforeTop {
					metrics.ReorgsTotal.WithLabelValues(n.label()).Inc()
				}
			}
			n.propagate(data)
		}
	}
	n.reportPoolSizes()
	return false
}

func (n *Node) tryDoubleSpend() {
	if len(n.neighbours) < 2 {
		return
	}
	t1, t2, ok := n.Wallet.DoubleSpend()
	if !ok {
		return
	}
	if _, conflict := n.Mempool.CompatibilityOf(t1); conflict {
		return
	}
	if _, conflict := n.Mempool.CompatibilityOf(t2); conflict {
		return
	}
	perm := rand.Perm(len(n.neighbours))
	n.log.Warn().Str("txid1", t1.Id().String()).Str("txid2", t2.Id().String()).Msg("double spend")
	n.send(EncodeTransaction(t1), n.neighbours[perm[0]])
	n.send(EncodeTransaction(t2), n.neighbours[perm[1]])
	n.Mempool.Add(t1)
}

// propagate sends data to every neighbour.
func (n *Node) propagate(data []byte) {
	for _, nb := range n.neighbours {
		n.send(data, nb)
	}
}

// send delivers data to a single neighbour. The channel is always
// buffered generously enough that delivery does not block in practice;
// the fallback goroutine only protects against a peer that has stopped
// draining its inbox.
func (n *Node) send(data []byte, nb Neighbour) {
	select {
	case nb.Send <- data:
	default:
		go func() { nb.Send <- data }()
	}
}

// shutDown runs the drain-and-barrier protocol: wait for every node to
// reach the barrier, then keep draining the inbound channel (answering
// any late-arriving transaction or block) until every node in the
// shared status vector reports nothing left in flight.
func (n *Node) shutDown() {
	n.log.Info().Msg("shutting down")
	n.sync.Arrive()
	for {
	drain:
		for {
			select {
			case data, ok := <-n.in:
				if !ok {
					break drain
				}
				msg, err := Decode(data)
				if err == nil && msg.Kind != KindShutDown {
					n.handle(data)
				}
				for _, nb := range n.neighbours {
					n.sync.MarkActive(nb.Id)
				}
			default:
				break drain
			}
		}
		if n.sync.MarkDone(n.Id) {
			return
		}
	}
}

func (n *Node) label() string {
	return strconv.Itoa(n.Id)
}

func (n *Node) reportPoolSizes() {
	metrics.MempoolSize.WithLabelValues(n.label()).Set(float64(n.Mempool.Size()))
	metrics.UtxoPoolSize.WithLabelValues(n.label()).Set(float64(n.Utxos.Size()))
}
