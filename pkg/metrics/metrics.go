// Package metrics exposes Prometheus counters and gauges describing
// what the simulated network is doing: blocks mined, transactions
// accepted, pool and pending-transaction sizes, and how often a node
// loses a fork race.
package metrics

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// BlocksMinedTotal counts blocks a node's own miner produced.
	BlocksMinedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "utxonet_blocks_mined_total",
			Help: "Total number of blocks mined locally",
		},
		[]string{"node"},
	)

	// TransactionsAcceptedTotal counts transactions that passed the
	// validation pipeline and entered the mempool.
	TransactionsAcceptedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "utxonet_transactions_accepted_total",
			Help: "Total number of transactions accepted into the mempool",
		},
		[]string{"node"},
	)

	// BlocksAcceptedTotal counts blocks that passed the validation
	// pipeline, whether or not they moved the chain tip.
	BlocksAcceptedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "utxonet_blocks_accepted_total",
			Help: "Total number of blocks accepted into the chain",
		},
		[]string{"node"},
	)

	// ReorgsTotal counts adoptions that required undoing at least one
	// previously-applied block.
	ReorgsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "utxonet_reorgs_total",
			Help: "Total number of chain reorganisations applied",
		},
		[]string{"node"},
	)

	// MempoolSize is the current number of pending transactions.
	MempoolSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "utxonet_mempool_size",
			Help: "Current number of pending transactions",
		},
		[]string{"node"},
	)

	// UtxoPoolSize is the current number of unspent outputs tracked.
	UtxoPoolSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "utxonet_utxo_pool_size",
			Help: "Current number of unspent outputs",
		},
		[]string{"node"},
	)

	// ChainHeight is the current height of a node's best chain.
	ChainHeight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "utxonet_chain_height",
			Help: "Current height of the node's best chain",
		},
		[]string{"node"},
	)
)

func init() {
	prometheus.MustRegister(
		BlocksMinedTotal,
		TransactionsAcceptedTotal,
		BlocksAcceptedTotal,
		ReorgsTotal,
		MempoolSize,
		UtxoPoolSize,
		ChainHeight,
	)
}

// StartServer starts the metrics HTTP server on addr in the
// background.
func StartServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Printf("[metrics] listening on %s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("[metrics] server error: %v", err)
		}
	}()
}
