// Package simulator exposes the narrow command surface the presentation
// layer calls into: node creation, block appending, network spawning, attack
// simulation, and findings retrieval. All returned values are plain
// serializable models.
package simulator

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/thanhnp/chain-sim/internal/attack"
	"github.com/thanhnp/chain-sim/internal/chain"
	"github.com/thanhnp/chain-sim/internal/config"
	"github.com/thanhnp/chain-sim/internal/models"
	"github.com/thanhnp/chain-sim/internal/network"
	"github.com/thanhnp/chain-sim/internal/report"
	"github.com/thanhnp/chain-sim/internal/storage"
)

var (
	// ErrNodeNotFound reports a command addressing an unregistered node.
	ErrNodeNotFound = errors.New("node not found")
	// ErrNetworkNotFound reports a command addressing an unregistered network.
	ErrNetworkNotFound = errors.New("network not found")
)

// Stores groups the storage-layer dependencies of the service.
type Stores struct {
	Blocks   *storage.BlockStore
	Findings *storage.FindingsStore
	Attacks  *storage.AttackStore
}

// NewStores builds the store set on top of one database.
func NewStores(db *storage.PebbleDB) *Stores {
	return &Stores{
		Blocks:   storage.NewBlockStore(db),
		Findings: storage.NewFindingsStore(db),
		Attacks:  storage.NewAttackStore(db),
	}
}

// Service owns the node and network registries and persists sealed blocks,
// findings and attack records through the storage layer. Nodes mine
// independently; the service serializes registry access.
type Service struct {
	mu       sync.Mutex
	sim      config.SimulationConfig
	stores   *Stores
	nodes    map[string]*network.Node
	networks map[string]*network.Network
	clock    func() int64
}

// New creates a Service with the given simulation parameters and stores.
func New(sim config.SimulationConfig, stores *Stores) *Service {
	return &Service{
		sim:      sim,
		stores:   stores,
		nodes:    make(map[string]*network.Node),
		networks: make(map[string]*network.Network),
		clock:    func() int64 { return time.Now().Unix() },
	}
}

// CreateNode mines a genesis block at the given difficulty and registers a
// new node owning it. A negative difficulty selects the configured default.
func (s *Service) CreateNode(difficulty int) (string, error) {
	if difficulty < 0 {
		difficulty = s.sim.Difficulty
	}

	c, err := chain.New(difficulty, s.sim.MaxAttempts, s.sim.GenesisTimestamp)
	if err != nil {
		return "", fmt.Errorf("creating node: %w", err)
	}

	node := network.NewNode(c)

	s.mu.Lock()
	s.nodes[node.ID] = node
	s.mu.Unlock()

	if err := s.persistChain(node); err != nil {
		return "", err
	}

	slog.Info("node created", "node", node.ID, "difficulty", difficulty)
	return node.ID, nil
}

// AppendBlock mines a block carrying payload onto the node's chain. A
// MiningExhausted failure from the chain propagates to the caller.
func (s *Service) AppendBlock(nodeID string, payload []string) (models.BlockSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[nodeID]
	if !ok {
		return models.BlockSummary{}, fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}

	block, err := node.Chain.Append(payloadBytes(payload), s.clock())
	if err != nil {
		return models.BlockSummary{}, fmt.Errorf("appending block to %s: %w", nodeID, err)
	}

	summary := blockSummary(nodeID, block)
	if err := s.stores.Blocks.Save(&summary); err != nil {
		return models.BlockSummary{}, err
	}
	return summary, nil
}

// CorruptNode replaces the payload of one block without resealing it,
// deliberately breaking the node's chain for detection scenarios.
func (s *Service) CorruptNode(nodeID string, index int, payload []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[nodeID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}
	return node.Chain.Corrupt(index, payloadBytes(payload))
}

// Validity runs the node's chain validation and returns it as data.
func (s *Service) Validity(nodeID string) (models.ValidationStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[nodeID]
	if !ok {
		return models.ValidationStatus{}, fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}

	res := node.Chain.Validate()
	return models.ValidationStatus{
		Valid:       res.Valid,
		FailedIndex: res.FailedIndex,
		Violation:   string(res.Violation),
	}, nil
}

// Chain returns the node's current chain as block summaries.
func (s *Service) Chain(nodeID string) ([]models.BlockSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[nodeID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}
	return chainSummaries(node), nil
}

// SpawnNetwork deep-clones the seed node's chain into size independent
// peers and registers them as a network. A non-positive size selects the
// configured default.
func (s *Service) SpawnNetwork(size int, seedNodeID string) (models.NetworkInfo, error) {
	if size <= 0 {
		size = s.sim.NetworkSize
	}

	s.mu.Lock()
	seed, ok := s.nodes[seedNodeID]
	if !ok {
		s.mu.Unlock()
		return models.NetworkInfo{}, fmt.Errorf("%w: %s", ErrNodeNotFound, seedNodeID)
	}

	net := network.Spawn(size, seed.Chain)
	s.networks[net.ID] = net

	info := models.NetworkInfo{ID: net.ID, Size: net.Size()}
	for _, node := range net.Nodes {
		s.nodes[node.ID] = node
		info.NodeIDs = append(info.NodeIDs, node.ID)
	}
	s.mu.Unlock()

	for _, node := range net.Nodes {
		if err := s.persistChain(node); err != nil {
			return models.NetworkInfo{}, err
		}
	}

	slog.Info("network spawned", "network", net.ID, "size", size, "seed", seedNodeID)
	return info, nil
}

// Compare re-runs the consensus comparison across the network's peers.
func (s *Service) Compare(networkID string) (models.ConsensusReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	net, ok := s.networks[networkID]
	if !ok {
		return models.ConsensusReport{}, fmt.Errorf("%w: %s", ErrNetworkNotFound, networkID)
	}
	return net.Compare(), nil
}

// RunAttackSimulation forges a takeover against ceil(ratio*size) of the
// network's peers and stores both the attack record and the resulting
// findings. A non-positive ratio selects the configured default. The forged
// chains diverge two blocks below the honest tip.
func (s *Service) RunAttackSimulation(networkID string, ratio float64) (models.AttackRecord, error) {
	if ratio <= 0 {
		ratio = s.sim.AttackerRatio
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	net, ok := s.networks[networkID]
	if !ok {
		return models.AttackRecord{}, fmt.Errorf("%w: %s", ErrNetworkNotFound, networkID)
	}

	divergeIndex := net.Nodes[0].Chain.Height() - 2
	if divergeIndex < 1 {
		divergeIndex = 1
	}

	record, err := attack.Run(net, ratio, divergeIndex)
	if err != nil {
		return models.AttackRecord{}, err
	}

	if err := s.stores.Attacks.Save(&record); err != nil {
		return models.AttackRecord{}, err
	}
	for _, id := range record.Attackers {
		if err := s.persistChainLocked(net.Node(id)); err != nil {
			return models.AttackRecord{}, err
		}
	}

	findings := report.Build(net, record.Consensus, &record)
	if err := s.stores.Findings.Save(&findings); err != nil {
		return models.AttackRecord{}, err
	}

	return record, nil
}

// GetFindings reports per-node validity, divergence, and attack role for a
// network. For a registered network the findings are computed from live
// state (merging any stored attack record) and re-persisted; for an unknown
// id the last stored findings are served.
func (s *Service) GetFindings(networkID string) (models.Findings, error) {
	s.mu.Lock()
	net, ok := s.networks[networkID]
	s.mu.Unlock()

	if !ok {
		stored, err := s.stores.Findings.Get(networkID)
		if err != nil {
			return models.Findings{}, err
		}
		if stored == nil {
			return models.Findings{}, fmt.Errorf("%w: %s", ErrNetworkNotFound, networkID)
		}
		return *stored, nil
	}

	attackRecord, err := s.stores.Attacks.Get(networkID)
	if err != nil {
		return models.Findings{}, err
	}

	s.mu.Lock()
	findings := report.Build(net, net.Compare(), attackRecord)
	s.mu.Unlock()

	if err := s.stores.Findings.Save(&findings); err != nil {
		return models.Findings{}, err
	}
	return findings, nil
}

func (s *Service) persistChain(node *network.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistChainLocked(node)
}

func (s *Service) persistChainLocked(node *network.Node) error {
	return s.stores.Blocks.SaveChain(chainSummaries(node))
}

func chainSummaries(node *network.Node) []models.BlockSummary {
	out := make([]models.BlockSummary, 0, node.Chain.Height())
	for _, b := range node.Chain.Blocks {
		out = append(out, blockSummary(node.ID, b))
	}
	return out
}

func blockSummary(nodeID string, b *chain.Block) models.BlockSummary {
	payload := make([]string, len(b.Payload))
	for i, item := range b.Payload {
		payload[i] = string(item)
	}

	return models.BlockSummary{
		NodeID:       nodeID,
		Index:        b.Index,
		Timestamp:    b.Timestamp,
		Payload:      payload,
		MerkleRoot:   hex.EncodeToString(b.MerkleRoot[:]),
		PreviousHash: hex.EncodeToString(b.PreviousHash[:]),
		Nonce:        b.Nonce,
		Hash:         hex.EncodeToString(b.Hash[:]),
	}
}

func payloadBytes(payload []string) [][]byte {
	out := make([][]byte, len(payload))
	for i, item := range payload {
		out[i] = []byte(item)
	}
	return out
}
