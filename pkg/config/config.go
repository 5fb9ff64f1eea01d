// Package config holds the simulation's environment-overridable
// parameters as an immutable struct, following the same
// load-from-env/validate/describe shape the node template uses for its
// own configuration.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/riftchain/utxonet/pkg/block"
)

// Config holds every recognised option for the node simulation.
type Config struct {
	// Nodes is the number of honest nodes to spawn.
	Nodes int
	// MaliciousNodes is the number of additional nodes that run the
	// double-spend behaviour.
	MaliciousNodes int
	// SpendProba is the per-tick Bernoulli probability a wallet proposes
	// a spend.
	SpendProba float64
	// TxsPerBlock is the mempool batch size a miner's candidate draws.
	TxsPerBlock int
	// Target is the compact-form proof-of-work target every block must
	// satisfy.
	Target block.Target
	// UtxoAmountInit is the balance assigned to each node's key at
	// genesis.
	UtxoAmountInit uint32

	// LogLevel is the minimum level logged: debug, info, warn, error.
	LogLevel string
	// JSONLogs switches the console logger to structured JSON output.
	JSONLogs bool
	// MetricsAddr is the address the Prometheus endpoint listens on. An
	// empty string disables it.
	MetricsAddr string
	// RunDuration bounds how long the simulation runs before shutdown is
	// broadcast, in seconds.
	RunDuration int
}

// Default returns the baseline configuration (spec §6's recognised
// options at their default values).
func Default() *Config {
	target, err := block.NewTarget(29, [3]byte{0x00, 0xff, 0xff})
	if err != nil {
		panic(err)
	}
	return &Config{
		Nodes:          4,
		MaliciousNodes: 0,
		SpendProba:     1.0 / 1_000_000,
		TxsPerBlock:    2,
		Target:         target,
		UtxoAmountInit: 10,
		LogLevel:       "info",
		JSONLogs:       false,
		MetricsAddr:    "",
		RunDuration:    5,
	}
}

// LoadFromEnv returns Default() overridden by any of its environment
// variables that are set.
func LoadFromEnv() *Config {
	cfg := Default()

	if v := os.Getenv("NODES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Nodes = n
		}
	}
	if v := os.Getenv("MALICIOUS_NODES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaliciousNodes = n
		}
	}
	if v := os.Getenv("SPEND_PROBA"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.SpendProba = f
		}
	}
	if v := os.Getenv("TXS_PER_BLOCK"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TxsPerBlock = n
		}
	}
	if v := os.Getenv("TARGET_EXPONENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Target.Exponent = uint8(n)
		}
	}
	if v := os.Getenv("UTXO_AMOUNT_INIT"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			cfg.UtxoAmountInit = uint32(n)
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("JSON_LOGS"); v == "true" {
		cfg.JSONLogs = true
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("RUN_DURATION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RunDuration = n
		}
	}

	return cfg
}

// Validate checks that the configuration describes a runnable
// simulation.
func (c *Config) Validate() error {
	if c.Nodes < 1 {
		return fmt.Errorf("nodes must be at least 1, got %d", c.Nodes)
	}
	if c.MaliciousNodes < 0 {
		return fmt.Errorf("malicious nodes cannot be negative, got %d", c.MaliciousNodes)
	}
	if c.SpendProba < 0 || c.SpendProba > 1 {
		return fmt.Errorf("spend proba must be in [0, 1], got %f", c.SpendProba)
	}
	if c.TxsPerBlock < 1 {
		return fmt.Errorf("txs per block must be at least 1, got %d", c.TxsPerBlock)
	}
	if c.Target.Exponent < 3 || c.Target.Exponent > 32 {
		return fmt.Errorf("target exponent must be in [3, 32], got %d", c.Target.Exponent)
	}
	if c.RunDuration < 1 {
		return fmt.Errorf("run duration must be at least 1 second, got %d", c.RunDuration)
	}
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}
	return nil
}

// String returns a human-readable description of the configuration.
func (c *Config) String() string {
	return fmt.Sprintf(`Simulation configuration:
  Honest nodes:     %d
  Malicious nodes:  %d
  Spend proba:      %g
  Txs per block:    %d
  Target exponent:  %d
  Utxo amount init: %d
  Log level:        %s
  JSON logs:        %v
  Metrics addr:     %q
  Run duration:     %ds`,
		c.Nodes,
		c.MaliciousNodes,
		c.SpendProba,
		c.TxsPerBlock,
		c.Target.Exponent,
		c.UtxoAmountInit,
		c.LogLevel,
		c.JSONLogs,
		c.MetricsAddr,
		c.RunDuration,
	)
}
