package chain

import (
	"errors"
	"fmt"
	"testing"
)

func newTestChain(t *testing.T, blocks int) *Chain {
	t.Helper()

	c, err := New(testDifficulty, testMaxAttempts, 1000)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for i := 0; i < blocks; i++ {
		payload := [][]byte{[]byte(fmt.Sprintf("Transaction %d", i))}
		if _, err := c.Append(payload, int64(1001+i)); err != nil {
			t.Fatalf("Append(%d) error = %v", i, err)
		}
	}
	return c
}

func TestNewChainMinesGenesis(t *testing.T) {
	c := newTestChain(t, 0)

	genesis := c.Tip()
	if genesis.Index != 0 {
		t.Fatalf("genesis index = %d, want 0", genesis.Index)
	}
	if !genesis.PreviousHash.IsEqual(&ZeroHash) {
		t.Fatalf("genesis previous hash = %v, want zero sentinel", genesis.PreviousHash)
	}
	if !genesis.Sealed() {
		t.Fatal("genesis not sealed")
	}
}

func TestAppendLinksBlocks(t *testing.T) {
	c := newTestChain(t, 3)

	if c.Height() != 4 {
		t.Fatalf("Height() = %d, want 4", c.Height())
	}
	for i := 1; i < c.Height(); i++ {
		if !c.Blocks[i].PreviousHash.IsEqual(&c.Blocks[i-1].Hash) {
			t.Fatalf("block %d does not reference the hash of block %d", i, i-1)
		}
	}
}

func TestAppendOnEmptyChain(t *testing.T) {
	empty := &Chain{Difficulty: testDifficulty, MaxAttempts: testMaxAttempts}
	if _, err := empty.Append([][]byte{[]byte("x")}, 1000); !errors.Is(err, ErrEmptyChain) {
		t.Fatalf("Append on empty chain error = %v, want ErrEmptyChain", err)
	}
}

func TestValidateFreshChain(t *testing.T) {
	c := newTestChain(t, 2)

	res := c.Validate()
	if !res.Valid {
		t.Fatalf("fresh chain invalid: index %d, violation %q", res.FailedIndex, res.Violation)
	}
	if res.FailedIndex != -1 {
		t.Fatalf("valid chain reported failing index %d, want -1", res.FailedIndex)
	}
}

func TestCorruptReportsContentViolation(t *testing.T) {
	c := newTestChain(t, 3)
	before := c.Blocks[1].Hash

	if err := c.Corrupt(2, [][]byte{[]byte("tampered")}); err != nil {
		t.Fatalf("Corrupt() error = %v", err)
	}

	res := c.Validate()
	if res.Valid {
		t.Fatal("corrupted chain reported valid")
	}
	if res.FailedIndex != 2 {
		t.Fatalf("failing index = %d, want 2", res.FailedIndex)
	}
	if res.Violation != ViolationContent {
		t.Fatalf("violation = %q, want %q", res.Violation, ViolationContent)
	}

	// Blocks before the corrupted index are untouched.
	if !c.Blocks[1].Hash.IsEqual(&before) {
		t.Fatal("corrupting block 2 altered block 1")
	}
}

func TestCorruptIndexOutOfRange(t *testing.T) {
	c := newTestChain(t, 1)
	if err := c.Corrupt(5, nil); err == nil {
		t.Fatal("Corrupt(5) on a 2-block chain returned nil error")
	}
}

func TestTamperedPreviousHashReportsLinkViolation(t *testing.T) {
	c := newTestChain(t, 3)

	c.Blocks[2].PreviousHash[0] ^= 0xff

	res := c.Validate()
	if res.Valid || res.FailedIndex != 2 || res.Violation != ViolationLink {
		t.Fatalf("got {valid:%v index:%d violation:%q}, want link violation at 2",
			res.Valid, res.FailedIndex, res.Violation)
	}
}

func TestTamperedHashReportsProofViolation(t *testing.T) {
	c := newTestChain(t, 1)

	// Flip the tip hash so the link check on later blocks cannot fire first.
	c.Blocks[1].Hash[31] ^= 0x01

	res := c.Validate()
	if res.Valid || res.FailedIndex != 1 || res.Violation != ViolationProof {
		t.Fatalf("got {valid:%v index:%d violation:%q}, want proof_of_work violation at 1",
			res.Valid, res.FailedIndex, res.Violation)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	c := newTestChain(t, 2)
	dup := c.Clone()

	if err := dup.Corrupt(1, [][]byte{[]byte("evil")}); err != nil {
		t.Fatalf("Corrupt() error = %v", err)
	}

	if res := c.Validate(); !res.Valid {
		t.Fatal("corrupting a clone invalidated the original chain")
	}
	if res := dup.Validate(); res.Valid {
		t.Fatal("corrupted clone still valid")
	}
}

func TestForkCopiesPrefix(t *testing.T) {
	c := newTestChain(t, 3)

	forked := c.Fork(2)
	if forked.Height() != 2 {
		t.Fatalf("Fork(2).Height() = %d, want 2", forked.Height())
	}
	if res := forked.Validate(); !res.Valid {
		t.Fatalf("forked prefix invalid: %+v", res)
	}
	if !forked.Blocks[1].Hash.IsEqual(&c.Blocks[1].Hash) {
		t.Fatal("forked prefix diverges from the source chain")
	}

	// Growing the fork never touches the source.
	if _, err := forked.Append([][]byte{[]byte("divergent")}, 2000); err != nil {
		t.Fatalf("Append() on fork error = %v", err)
	}
	if c.Height() != 4 {
		t.Fatalf("source chain height changed to %d", c.Height())
	}
}

func TestFingerprintTracksBlockHashes(t *testing.T) {
	a := newTestChain(t, 2)
	b := a.Clone()

	fa, fb := a.Fingerprint(), b.Fingerprint()
	if !fa.IsEqual(&fb) {
		t.Fatal("identical replicas have different fingerprints")
	}

	if _, err := b.Append([][]byte{[]byte("extra")}, 3000); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	fb = b.Fingerprint()
	if fa.IsEqual(&fb) {
		t.Fatal("diverged replicas share a fingerprint")
	}
}
