// Command nodesim runs a network of simulated UTXO nodes for a fixed
// duration, then broadcasts a shutdown and reports each node's final
// chain tip.
package main

import (
	"os"
	"time"

	"github.com/riftchain/utxonet/pkg/config"
	"github.com/riftchain/utxonet/pkg/log"
	"github.com/riftchain/utxonet/pkg/metrics"
	"github.com/riftchain/utxonet/pkg/network"
)

func main() {
	cfg := config.LoadFromEnv()
	log.Init(cfg.LogLevel, cfg.JSONLogs)

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		os.Exit(1)
	}
	log.Info().Msg(cfg.String())

	if cfg.MetricsAddr != "" {
		metrics.StartServer(cfg.MetricsAddr)
	}

	net, err := network.Random(cfg)
	if err != nil {
		log.Error().Err(err).Msg("failed to build network")
		os.Exit(1)
	}

	net.Run()
	time.Sleep(time.Duration(cfg.RunDuration) * time.Second)

	log.Info().Msg("network shutting down")
	net.Broadcast(network.EncodeShutDown())
	net.Wait()

	for _, node := range net.Nodes() {
		log.Info().
			Int("node", node.Id).
			Uint64("height", node.Chain.Height()).
			Str("tip", node.Chain.TopHash().String()).
			Int("utxos", node.Utxos.Size()).
			Int("mempool", node.Mempool.Size()).
			Msg("final state")
	}
}
