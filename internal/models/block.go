package models

// BlockSummary is the serializable view of a sealed block. Hashes are
// hex-encoded; payload items travel as strings.
type BlockSummary struct {
	NodeID       string   `json:"node_id"`
	Index        uint64   `json:"index"`
	Timestamp    int64    `json:"timestamp"`
	Payload      []string `json:"payload"`
	MerkleRoot   string   `json:"merkle_root"`
	PreviousHash string   `json:"previous_hash"`
	Nonce        uint64   `json:"nonce"`
	Hash         string   `json:"hash"`
}

// ValidationStatus is the serializable outcome of a chain validation walk.
// FailedIndex is -1 when the chain is valid.
type ValidationStatus struct {
	Valid       bool   `json:"valid"`
	FailedIndex int    `json:"failed_index"`
	Violation   string `json:"violation,omitempty"`
}
