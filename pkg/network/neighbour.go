package network

import "github.com/riftchain/utxonet/pkg/keys"

// Neighbour is one directed gossip link out of a node: the peer's index
// and public key, and the channel that delivers bytes into its inbox.
type Neighbour struct {
	Id        int
	PublicKey *keys.PublicKey
	Send      chan<- []byte
}
