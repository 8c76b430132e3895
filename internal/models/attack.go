package models

// Attack outcomes.
const (
	AttackTakeover = "takeover"
	AttackFailed   = "attack_failed"
)

// Alterations an attack applies to the selected nodes.
const (
	AlterationChainReplaced = "chain_replaced"
)

// AttackRecord describes one attack simulation: which nodes were altered,
// how, and how the consensus comparison came out afterwards.
type AttackRecord struct {
	NetworkID      string          `json:"network_id"`
	Attackers      []string        `json:"attackers"`
	Alteration     string          `json:"alteration"`
	DivergeIndex   int             `json:"diverge_index"`
	HonestLength   int             `json:"honest_length"`
	AttackerLength int             `json:"attacker_length"`
	Outcome        string          `json:"outcome"`
	Consensus      ConsensusReport `json:"consensus"`
}
