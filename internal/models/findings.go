package models

// Node roles within an attack scenario.
const (
	RoleHonest   = "honest"
	RoleAttacker = "attacker"
)

// NodeFinding is the per-node integrity verdict: local chain validity,
// divergence from the majority group, and the node's role if an attack was
// simulated.
type NodeFinding struct {
	NodeID               string `json:"node_id"`
	Valid                bool   `json:"valid"`
	FailedIndex          int    `json:"failed_index"`
	Violation            string `json:"violation,omitempty"`
	DivergedFromMajority bool   `json:"diverged_from_majority"`
	Role                 string `json:"role,omitempty"`
	ChainLength          int    `json:"chain_length"`
	TipHash              string `json:"tip_hash"`
}

// Findings is the structured integrity report the presentation layer
// consumes.
type Findings struct {
	NetworkID string          `json:"network_id"`
	Consensus ConsensusReport `json:"consensus"`
	Nodes     []NodeFinding   `json:"nodes"`
	Corrupted []string        `json:"corrupted"`
	Attack    *AttackRecord   `json:"attack,omitempty"`
}
