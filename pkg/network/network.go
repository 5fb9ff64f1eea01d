package network

import (
	"sync"

	"github.com/riftchain/utxonet/pkg/blockchain"
	"github.com/riftchain/utxonet/pkg/config"
	"github.com/riftchain/utxonet/pkg/keys"
	"github.com/riftchain/utxonet/pkg/mempool"
	"github.com/riftchain/utxonet/pkg/mining"
	"github.com/riftchain/utxonet/pkg/pool"
	"github.com/riftchain/utxonet/pkg/wallet"
)

const inboxCapacity = 256

// Network owns every node, the channels that connect them, and the
// goroutines running their loops.
type Network struct {
	nodes   []*Node
	inboxes []chan []byte
	wg      sync.WaitGroup
}

// Random builds a network of cfg.Nodes honest participants and
// cfg.MaliciousNodes malicious ones, connected by a random connected
// graph, each seeded with an equal genesis balance of every
// participant's key.
func Random(cfg *config.Config) (*Network, error) {
	total := cfg.Nodes + cfg.MaliciousNodes
	pubKeys := make([]*keys.PublicKey, total)
	privKeys := make([]*keys.PrivateKey, total)
	for i := 0; i < total; i++ {
		sk, err := keys.Generate()
		if err != nil {
			return nil, err
		}
		privKeys[i] = sk
		pubKeys[i] = sk.Public()
	}

	graph := RandomConnectedGraph(total)
	inboxes := make([]chan []byte, total)
	for i := range inboxes {
		inboxes[i] = make(chan []byte, inboxCapacity)
	}

	syncs := NewSynchronizers(total)

	net := &Network{nodes: make([]*Node, total), inboxes: inboxes}
	for id := 0; id < total; id++ {
		neighbours := make([]Neighbour, 0, len(graph[id]))
		for peer := range graph[id] {
			neighbours = append(neighbours, Neighbour{Id: peer, PublicKey: pubKeys[peer], Send: inboxes[peer]})
		}

		chain := blockchain.New(cfg.Target)
		utxos := pool.New(pubKeys, cfg.UtxoAmountInit)
		mp := mempool.New(cfg.TxsPerBlock)
		w := wallet.New(pubKeys[id], privKeys[id], pubKeys, utxos.OwnedBy(pubKeys[id]), cfg.SpendProba)
		miner := mining.New(cfg.Target)

		net.nodes[id] = NewNode(id, pubKeys[id], privKeys[id], inboxes[id], neighbours, id >= cfg.Nodes, chain, utxos, mp, w, miner, syncs[id])
	}
	return net, nil
}

// Run starts every node's loop on its own goroutine.
func (n *Network) Run() {
	n.wg.Add(len(n.nodes))
	for _, node := range n.nodes {
		node := node
		go func() {
			defer n.wg.Done()
			node.Run()
		}()
	}
}

// Broadcast delivers msg to every node's inbox directly (bypassing
// gossip), used to fan out the shutdown sentinel.
func (n *Network) Broadcast(msg []byte) {
	for _, inbox := range n.inboxes {
		inbox := inbox
		go func() { inbox <- msg }()
	}
}

// Wait blocks until every node's goroutine has returned.
func (n *Network) Wait() {
	n.wg.Wait()
}

// Nodes returns every node, for inspection after shutdown.
func (n *Network) Nodes() []*Node {
	return n.nodes
}

// Partition groups nodes into equivalence classes under same, useful
// for checking that every honest node converged on the same chain tip
// after a run.
func Partition(nodes []*Node, same func(a, b *Node) bool) [][]*Node {
	var groups [][]*Node
	for _, node := range nodes {
		placed := false
		for i, group := range groups {
			if same(group[0], node) {
				groups[i] = append(groups[i], node)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, []*Node{node})
		}
	}
	return groups
}

// SameChainTip is a Partition predicate grouping nodes that share the
// same chain tip id.
func SameChainTip(a, b *Node) bool {
	return a.Chain.TopHash() == b.Chain.TopHash()
}
