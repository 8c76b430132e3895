package storage

import (
	"encoding/json"
	"fmt"

	"github.com/thanhnp/chain-sim/internal/models"
)

// FindingsStore persists integrity findings per network.
type FindingsStore struct {
	db *PebbleDB
}

// NewFindingsStore creates a new FindingsStore
func NewFindingsStore(db *PebbleDB) *FindingsStore {
	return &FindingsStore{db: db}
}

// Save stores the findings for a network, replacing any previous report.
func (s *FindingsStore) Save(findings *models.Findings) error {
	data, err := json.Marshal(findings)
	if err != nil {
		return fmt.Errorf("failed to marshal findings: %w", err)
	}
	return s.db.Put(CFFindings, []byte(findings.NetworkID), data)
}

// Get retrieves the findings for a network, or nil when none were stored.
func (s *FindingsStore) Get(networkID string) (*models.Findings, error) {
	data, err := s.db.Get(CFFindings, []byte(networkID))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	var findings models.Findings
	if err := json.Unmarshal(data, &findings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal findings: %w", err)
	}
	return &findings, nil
}
