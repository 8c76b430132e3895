package network

import (
	"fmt"
	"testing"

	"github.com/thanhnp/chain-sim/internal/chain"
)

const (
	testDifficulty  = 1
	testMaxAttempts = 1 << 16
)

func seedChain(t *testing.T, blocks int) *chain.Chain {
	t.Helper()

	c, err := chain.New(testDifficulty, testMaxAttempts, 1000)
	if err != nil {
		t.Fatalf("chain.New() error = %v", err)
	}
	for i := 0; i < blocks; i++ {
		payload := [][]byte{[]byte(fmt.Sprintf("Transaction %d", i))}
		if _, err := c.Append(payload, int64(1001+i)); err != nil {
			t.Fatalf("Append(%d) error = %v", i, err)
		}
	}
	return c
}

func TestSpawnClonesIndependentPeers(t *testing.T) {
	seed := seedChain(t, 3)
	net := Spawn(5, seed)

	if net.Size() != 5 {
		t.Fatalf("Size() = %d, want 5", net.Size())
	}

	// Corrupting one peer must not leak into any other replica.
	if err := net.Nodes[0].Chain.Corrupt(1, [][]byte{[]byte("evil")}); err != nil {
		t.Fatalf("Corrupt() error = %v", err)
	}
	for i := 1; i < net.Size(); i++ {
		if res := net.Nodes[i].Chain.Validate(); !res.Valid {
			t.Fatalf("peer %d invalidated by corruption of peer 0", i)
		}
	}
	if res := seed.Validate(); !res.Valid {
		t.Fatal("seed chain invalidated by corruption of a spawned peer")
	}
}

func TestCompareHealthyNetwork(t *testing.T) {
	net := Spawn(5, seedChain(t, 3))

	report := net.Compare()
	if report.NoMajority {
		t.Fatal("healthy network reported NoMajority")
	}
	if len(report.Groups) != 1 {
		t.Fatalf("healthy network has %d fingerprint groups, want 1", len(report.Groups))
	}
	if report.MajorityCount != 5 {
		t.Fatalf("majority count = %d, want 5", report.MajorityCount)
	}

	if corrupted := net.DetectCorrupted(report); len(corrupted) != 0 {
		t.Fatalf("DetectCorrupted() = %v on a healthy network, want empty", corrupted)
	}
}

func TestCompareFlagsDivergedMinority(t *testing.T) {
	net := Spawn(5, seedChain(t, 3))

	// One peer grows an extra block: internally valid, but diverged.
	if _, err := net.Nodes[0].Chain.Append([][]byte{[]byte("minor corruption")}, 2000); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	report := net.Compare()
	if report.NoMajority {
		t.Fatal("4-vs-1 split reported NoMajority")
	}
	if report.MajorityCount != 4 {
		t.Fatalf("majority count = %d, want 4", report.MajorityCount)
	}

	corrupted := net.DetectCorrupted(report)
	if len(corrupted) != 1 || corrupted[0] != net.Nodes[0].ID {
		t.Fatalf("DetectCorrupted() = %v, want only the diverged peer %s", corrupted, net.Nodes[0].ID)
	}

	// The diverged chain is still internally valid; divergence alone flags it.
	if res := net.Nodes[0].Chain.Validate(); !res.Valid {
		t.Fatal("diverged chain unexpectedly invalid")
	}
}

func TestCompareDetectsInternalCorruption(t *testing.T) {
	net := Spawn(5, seedChain(t, 3))

	// Corrupt a payload without resealing: the fingerprint does not change,
	// so only the local validity signal can catch it.
	if err := net.Nodes[2].Chain.Corrupt(2, [][]byte{[]byte("malicious")}); err != nil {
		t.Fatalf("Corrupt() error = %v", err)
	}

	report := net.Compare()
	if report.MajorityCount != 5 {
		t.Fatalf("payload corruption changed the fingerprint grouping: %+v", report)
	}

	corrupted := net.DetectCorrupted(report)
	if len(corrupted) != 1 || corrupted[0] != net.Nodes[2].ID {
		t.Fatalf("DetectCorrupted() = %v, want only the corrupted peer %s", corrupted, net.Nodes[2].ID)
	}
}

func TestCompareTieReportsNoMajority(t *testing.T) {
	net := Spawn(4, seedChain(t, 2))

	// Split 2-2: two peers append the same divergent block.
	for _, i := range []int{0, 1} {
		if _, err := net.Nodes[i].Chain.Append([][]byte{[]byte("fork")}, 2000); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	report := net.Compare()
	if !report.NoMajority {
		t.Fatalf("2-vs-2 split not reported as NoMajority: %+v", report)
	}
	if report.MajorityFingerprint != "" {
		t.Fatalf("tied comparison still elected majority %q", report.MajorityFingerprint)
	}

	// With no majority only locally invalid peers are flagged; all four
	// chains are internally valid here.
	if corrupted := net.DetectCorrupted(report); len(corrupted) != 0 {
		t.Fatalf("DetectCorrupted() = %v under NoMajority, want empty", corrupted)
	}
}

func TestNodeLookup(t *testing.T) {
	net := Spawn(3, seedChain(t, 1))

	want := net.Nodes[1]
	if got := net.Node(want.ID); got != want {
		t.Fatalf("Node(%s) = %v, want %v", want.ID, got, want)
	}
	if got := net.Node("missing"); got != nil {
		t.Fatalf("Node(missing) = %v, want nil", got)
	}
}
