package models

// ConsensusGroup is one set of nodes sharing a chain fingerprint.
type ConsensusGroup struct {
	Fingerprint string   `json:"fingerprint"`
	Count       int      `json:"count"`
	Members     []string `json:"members"`
}

// ConsensusReport is the outcome of comparing every node's chain fingerprint.
// The majority group is the one with the strictly largest count; a tie is
// surfaced through NoMajority instead of an arbitrary pick.
type ConsensusReport struct {
	NetworkID           string           `json:"network_id,omitempty"`
	TotalNodes          int              `json:"total_nodes"`
	Groups              []ConsensusGroup `json:"groups"`
	MajorityFingerprint string           `json:"majority_fingerprint,omitempty"`
	MajorityCount       int              `json:"majority_count"`
	NoMajority          bool             `json:"no_majority"`
}
