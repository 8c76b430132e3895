package network

import (
	"github.com/google/uuid"

	"github.com/thanhnp/chain-sim/internal/chain"
)

// Node is one simulated peer: an identity plus exclusive ownership of a
// chain replica.
type Node struct {
	ID    string
	Chain *chain.Chain
}

// NewNode wraps a chain in a fresh peer identity. The node takes ownership
// of the chain.
func NewNode(c *chain.Chain) *Node {
	return &Node{ID: uuid.NewString(), Chain: c}
}

// Clone returns an independent peer with its own deep copy of the chain and
// a fresh identity, so corrupting one peer never affects another.
func (n *Node) Clone() *Node {
	return &Node{ID: uuid.NewString(), Chain: n.Chain.Clone()}
}

// FingerprintHex returns the hex-encoded chain fingerprint used for
// cross-node comparison.
func (n *Node) FingerprintHex() string {
	return fingerprintHex(n.Chain)
}
