package storage

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/thanhnp/chain-sim/internal/models"
)

// BlockStore persists sealed block summaries per node.
type BlockStore struct {
	db *PebbleDB
}

// NewBlockStore creates a new BlockStore
func NewBlockStore(db *PebbleDB) *BlockStore {
	return &BlockStore{db: db}
}

// blockKey creates a key for the blocks column family
func blockKey(nodeID, hash string) []byte {
	return []byte(fmt.Sprintf("%s:%s", nodeID, hash))
}

// blockHeightKey creates a key for the blocks_by_height column family
func blockHeightKey(nodeID string, index uint64) []byte {
	return []byte(fmt.Sprintf("%s:%012d", nodeID, index))
}

// Save stores a block summary and updates the node's tip index.
func (s *BlockStore) Save(block *models.BlockSummary) error {
	batch := s.db.NewBatch()
	defer batch.Destroy()

	if err := s.putBlock(batch, block); err != nil {
		return err
	}
	return s.db.WriteBatch(batch)
}

// SaveChain stores every block of a node's chain in a single batch.
func (s *BlockStore) SaveChain(blocks []models.BlockSummary) error {
	batch := s.db.NewBatch()
	defer batch.Destroy()

	for i := range blocks {
		if err := s.putBlock(batch, &blocks[i]); err != nil {
			return err
		}
	}
	return s.db.WriteBatch(batch)
}

func (s *BlockStore) putBlock(batch *WriteBatch, block *models.BlockSummary) error {
	data, err := json.Marshal(block)
	if err != nil {
		return fmt.Errorf("failed to marshal block: %w", err)
	}

	// Store block by hash
	if err := s.db.PutBatch(batch, CFBlocks, blockKey(block.NodeID, block.Hash), data); err != nil {
		return err
	}
	// Store hash by index for lookup
	if err := s.db.PutBatch(batch, CFBlocksByHeight, blockHeightKey(block.NodeID, block.Index), []byte(block.Hash)); err != nil {
		return err
	}
	// Track the tip index
	return s.db.PutBatch(batch, CFChainState, []byte(block.NodeID), []byte(strconv.FormatUint(block.Index, 10)))
}

// GetByHash retrieves a block by its hash
func (s *BlockStore) GetByHash(nodeID, hash string) (*models.BlockSummary, error) {
	data, err := s.db.Get(CFBlocks, blockKey(nodeID, hash))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	var block models.BlockSummary
	if err := json.Unmarshal(data, &block); err != nil {
		return nil, fmt.Errorf("failed to unmarshal block: %w", err)
	}
	return &block, nil
}

// GetByIndex retrieves a block by its chain index
func (s *BlockStore) GetByIndex(nodeID string, index uint64) (*models.BlockSummary, error) {
	hashData, err := s.db.Get(CFBlocksByHeight, blockHeightKey(nodeID, index))
	if err != nil {
		return nil, err
	}
	if hashData == nil {
		return nil, nil
	}

	return s.GetByHash(nodeID, string(hashData))
}

// GetTip retrieves the most recently stored block for a node
func (s *BlockStore) GetTip(nodeID string) (*models.BlockSummary, error) {
	indexData, err := s.db.Get(CFChainState, []byte(nodeID))
	if err != nil {
		return nil, err
	}
	if indexData == nil {
		return nil, nil
	}

	index, err := strconv.ParseUint(string(indexData), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tip index: %w", err)
	}

	return s.GetByIndex(nodeID, index)
}

// GetChain retrieves all stored blocks of a node in index order.
func (s *BlockStore) GetChain(nodeID string) ([]models.BlockSummary, error) {
	iter, err := s.db.NewPrefixIterator(CFBlocksByHeight, []byte(nodeID+":"))
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var blocks []models.BlockSummary
	for ; iter.Valid(); iter.Next() {
		block, err := s.GetByHash(nodeID, string(iter.Value()))
		if err != nil {
			return nil, err
		}
		if block != nil {
			blocks = append(blocks, *block)
		}
	}
	return blocks, nil
}
