package simulator

import (
	"errors"
	"fmt"
	"testing"

	"github.com/thanhnp/chain-sim/internal/chain"
	"github.com/thanhnp/chain-sim/internal/config"
	"github.com/thanhnp/chain-sim/internal/models"
	"github.com/thanhnp/chain-sim/internal/storage"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := storage.NewMemoryDB()
	if err != nil {
		t.Fatalf("NewMemoryDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	svc := New(config.SimulationConfig{
		Difficulty:       1,
		MaxAttempts:      1 << 16,
		NetworkSize:      5,
		SeedBlocks:       3,
		AttackerRatio:    0.6,
		GenesisTimestamp: 1000,
	}, NewStores(db))

	// Logical clock keeps block hashes reproducible across runs.
	ts := int64(1000)
	svc.clock = func() int64 {
		ts++
		return ts
	}
	return svc
}

func seedNode(t *testing.T, svc *Service, blocks int) string {
	t.Helper()

	nodeID, err := svc.CreateNode(-1)
	if err != nil {
		t.Fatalf("CreateNode() error = %v", err)
	}
	for i := 0; i < blocks; i++ {
		if _, err := svc.AppendBlock(nodeID, []string{fmt.Sprintf("Transaction %d", i)}); err != nil {
			t.Fatalf("AppendBlock(%d) error = %v", i, err)
		}
	}
	return nodeID
}

func TestCreateNodeAndAppendBlock(t *testing.T) {
	svc := newTestService(t)
	nodeID := seedNode(t, svc, 2)

	blocks, err := svc.Chain(nodeID)
	if err != nil {
		t.Fatalf("Chain() error = %v", err)
	}
	if len(blocks) != 3 {
		t.Fatalf("chain has %d blocks, want genesis + 2", len(blocks))
	}
	if blocks[0].Index != 0 || blocks[2].PreviousHash != blocks[1].Hash {
		t.Fatalf("chain summaries inconsistent: %+v", blocks)
	}

	status, err := svc.Validity(nodeID)
	if err != nil {
		t.Fatalf("Validity() error = %v", err)
	}
	if !status.Valid || status.FailedIndex != -1 {
		t.Fatalf("Validity() = %+v, want valid", status)
	}
}

func TestAppendBlockPersistsToStore(t *testing.T) {
	svc := newTestService(t)
	nodeID, err := svc.CreateNode(-1)
	if err != nil {
		t.Fatalf("CreateNode() error = %v", err)
	}

	summary, err := svc.AppendBlock(nodeID, []string{"Transaction 0"})
	if err != nil {
		t.Fatalf("AppendBlock() error = %v", err)
	}

	stored, err := svc.stores.Blocks.GetByHash(nodeID, summary.Hash)
	if err != nil {
		t.Fatalf("GetByHash() error = %v", err)
	}
	if stored == nil || stored.Index != 1 || stored.Payload[0] != "Transaction 0" {
		t.Fatalf("stored block = %+v, want %+v", stored, summary)
	}

	tip, err := svc.stores.Blocks.GetTip(nodeID)
	if err != nil {
		t.Fatalf("GetTip() error = %v", err)
	}
	if tip == nil || tip.Hash != summary.Hash {
		t.Fatalf("stored tip = %+v, want appended block", tip)
	}
}

func TestAppendBlockUnknownNode(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.AppendBlock("missing", []string{"x"}); !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("AppendBlock(missing) error = %v, want ErrNodeNotFound", err)
	}
}

func TestCreateNodePropagatesMiningExhausted(t *testing.T) {
	svc := newTestService(t)
	svc.sim.MaxAttempts = 8

	if _, err := svc.CreateNode(64); !errors.Is(err, chain.ErrMiningExhausted) {
		t.Fatalf("CreateNode(64) error = %v, want ErrMiningExhausted", err)
	}
}

func TestSpawnNetworkAndHealthyFindings(t *testing.T) {
	svc := newTestService(t)
	seedID := seedNode(t, svc, 3)

	info, err := svc.SpawnNetwork(5, seedID)
	if err != nil {
		t.Fatalf("SpawnNetwork() error = %v", err)
	}
	if info.Size != 5 || len(info.NodeIDs) != 5 {
		t.Fatalf("SpawnNetwork() = %+v, want 5 nodes", info)
	}

	findings, err := svc.GetFindings(info.ID)
	if err != nil {
		t.Fatalf("GetFindings() error = %v", err)
	}
	if findings.Consensus.MajorityCount != 5 || findings.Consensus.NoMajority {
		t.Fatalf("consensus = %+v, want one majority group of 5", findings.Consensus)
	}
	if len(findings.Corrupted) != 0 {
		t.Fatalf("Corrupted = %v on a healthy network", findings.Corrupted)
	}
}

func TestCorruptNodeShowsInFindings(t *testing.T) {
	svc := newTestService(t)
	seedID := seedNode(t, svc, 3)

	info, err := svc.SpawnNetwork(5, seedID)
	if err != nil {
		t.Fatalf("SpawnNetwork() error = %v", err)
	}

	victim := info.NodeIDs[2]
	if err := svc.CorruptNode(victim, 2, []string{"tampered"}); err != nil {
		t.Fatalf("CorruptNode() error = %v", err)
	}

	findings, err := svc.GetFindings(info.ID)
	if err != nil {
		t.Fatalf("GetFindings() error = %v", err)
	}
	if len(findings.Corrupted) != 1 || findings.Corrupted[0] != victim {
		t.Fatalf("Corrupted = %v, want exactly %s", findings.Corrupted, victim)
	}
	for _, f := range findings.Nodes {
		if f.NodeID == victim {
			if f.Valid || f.FailedIndex != 2 || f.Violation != string(chain.ViolationContent) {
				t.Fatalf("victim finding = %+v, want content violation at 2", f)
			}
		}
	}
}

func TestRunAttackSimulationTakeover(t *testing.T) {
	svc := newTestService(t)
	seedID := seedNode(t, svc, 3)

	info, err := svc.SpawnNetwork(5, seedID)
	if err != nil {
		t.Fatalf("SpawnNetwork() error = %v", err)
	}

	record, err := svc.RunAttackSimulation(info.ID, 0.6)
	if err != nil {
		t.Fatalf("RunAttackSimulation() error = %v", err)
	}
	if record.Outcome != models.AttackTakeover {
		t.Fatalf("outcome = %q, want takeover", record.Outcome)
	}
	if len(record.Attackers) != 3 {
		t.Fatalf("attackers = %d, want 3", len(record.Attackers))
	}
	if record.DivergeIndex != 2 {
		t.Fatalf("diverge index = %d, want 2 (tip height 4 minus 2)", record.DivergeIndex)
	}

	findings, err := svc.GetFindings(info.ID)
	if err != nil {
		t.Fatalf("GetFindings() error = %v", err)
	}
	if findings.Attack == nil || findings.Attack.Outcome != models.AttackTakeover {
		t.Fatalf("findings attack = %+v, want the takeover record", findings.Attack)
	}

	honest := 0
	for _, f := range findings.Nodes {
		if f.Role == models.RoleHonest {
			honest++
			if !f.Valid || !f.DivergedFromMajority {
				t.Fatalf("honest node finding = %+v, want valid but diverging", f)
			}
		}
	}
	if honest != 2 {
		t.Fatalf("honest nodes = %d, want 2", honest)
	}

	// The stored record matches what the call returned.
	stored, err := svc.stores.Attacks.Get(info.ID)
	if err != nil {
		t.Fatalf("Attacks.Get() error = %v", err)
	}
	if stored == nil || stored.Outcome != record.Outcome || len(stored.Attackers) != 3 {
		t.Fatalf("stored attack record = %+v", stored)
	}
}

func TestRunAttackSimulationSubMajority(t *testing.T) {
	svc := newTestService(t)
	seedID := seedNode(t, svc, 3)

	info, err := svc.SpawnNetwork(5, seedID)
	if err != nil {
		t.Fatalf("SpawnNetwork() error = %v", err)
	}

	record, err := svc.RunAttackSimulation(info.ID, 0.3)
	if err != nil {
		t.Fatalf("RunAttackSimulation() error = %v", err)
	}
	if record.Outcome != models.AttackFailed {
		t.Fatalf("outcome = %q, want attack_failed", record.Outcome)
	}
	if record.Consensus.MajorityCount != 3 {
		t.Fatalf("majority count = %d, want the 3 honest nodes", record.Consensus.MajorityCount)
	}
}

func TestGetFindingsUnknownNetwork(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.GetFindings("missing"); !errors.Is(err, ErrNetworkNotFound) {
		t.Fatalf("GetFindings(missing) error = %v, want ErrNetworkNotFound", err)
	}
}
