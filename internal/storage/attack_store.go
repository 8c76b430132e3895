package storage

import (
	"encoding/json"
	"fmt"

	"github.com/thanhnp/chain-sim/internal/models"
)

// AttackStore persists attack records per network.
type AttackStore struct {
	db *PebbleDB
}

// NewAttackStore creates a new AttackStore
func NewAttackStore(db *PebbleDB) *AttackStore {
	return &AttackStore{db: db}
}

// Save stores the attack record for a network, replacing any previous one.
func (s *AttackStore) Save(record *models.AttackRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal attack record: %w", err)
	}
	return s.db.Put(CFAttacks, []byte(record.NetworkID), data)
}

// Get retrieves the attack record for a network, or nil when none exists.
func (s *AttackStore) Get(networkID string) (*models.AttackRecord, error) {
	data, err := s.db.Get(CFAttacks, []byte(networkID))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	var record models.AttackRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal attack record: %w", err)
	}
	return &record, nil
}
