package chain

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// ErrEmptyChain reports an append on a chain with no genesis block.
var ErrEmptyChain = errors.New("chain has no genesis block")

// Violation names the chain invariant a block failed during validation.
type Violation string

const (
	ViolationNone    Violation = ""
	ViolationLink    Violation = "link"
	ViolationProof   Violation = "proof_of_work"
	ViolationContent Violation = "content"
)

// ValidationResult localizes the first invariant failure in a chain.
// Invalidity is data, not an error: a corrupted chain is an expected,
// reportable outcome of the simulation.
type ValidationResult struct {
	Valid       bool
	FailedIndex int
	Violation   Violation
}

// Chain is an append-only sequence of sealed blocks. A chain is owned by
// exactly one node; cross-node inspection goes through deep clones.
type Chain struct {
	Difficulty  int
	MaxAttempts uint64
	Blocks      []*Block
}

// New mines a genesis block at the given difficulty and returns the chain
// holding it. The genesis previous hash is the all-zero sentinel.
func New(difficulty int, maxAttempts uint64, genesisTimestamp int64) (*Chain, error) {
	genesis := NewBlock(0, genesisTimestamp, [][]byte{[]byte("genesis")}, ZeroHash)
	if err := Mine(genesis, difficulty, maxAttempts); err != nil {
		return nil, err
	}

	return &Chain{
		Difficulty:  difficulty,
		MaxAttempts: maxAttempts,
		Blocks:      []*Block{genesis},
	}, nil
}

// Height returns the number of blocks in the chain.
func (c *Chain) Height() int { return len(c.Blocks) }

// Tip returns the most recently appended block, or nil for an empty chain.
func (c *Chain) Tip() *Block {
	if len(c.Blocks) == 0 {
		return nil
	}
	return c.Blocks[len(c.Blocks)-1]
}

// Append mines a block carrying payload on top of the current tip and
// appends it once sealed.
func (c *Chain) Append(payload [][]byte, timestamp int64) (*Block, error) {
	tip := c.Tip()
	if tip == nil {
		return nil, ErrEmptyChain
	}

	b := NewBlock(tip.Index+1, timestamp, payload, tip.Hash)
	if err := Mine(b, c.Difficulty, c.MaxAttempts); err != nil {
		return nil, err
	}

	c.Blocks = append(c.Blocks, b)
	return b, nil
}

// Validate walks the chain checking, per block, the previous-hash link, the
// proof of work, and the merkle content in that order, and reports the first
// block that breaks an invariant.
func (c *Chain) Validate() ValidationResult {
	for i, b := range c.Blocks {
		if i > 0 && !b.PreviousHash.IsEqual(&c.Blocks[i-1].Hash) {
			return ValidationResult{FailedIndex: i, Violation: ViolationLink}
		}
		if !NewProofOfWork(b, c.Difficulty).Validate() {
			return ValidationResult{FailedIndex: i, Violation: ViolationProof}
		}
		if root := ComputeMerkleRoot(b.Payload); !root.IsEqual(&b.MerkleRoot) {
			return ValidationResult{FailedIndex: i, Violation: ViolationContent}
		}
	}

	return ValidationResult{Valid: true, FailedIndex: -1}
}

// Corrupt swaps the payload at index without resealing the block. The
// resulting merkle mismatch is the intended observable effect; hashes and
// downstream links stay untouched.
func (c *Chain) Corrupt(index int, newPayload [][]byte) error {
	if index < 0 || index >= len(c.Blocks) {
		return fmt.Errorf("corrupt: index %d out of range [0,%d)", index, len(c.Blocks))
	}
	c.Blocks[index].Payload = clonePayload(newPayload)
	return nil
}

// Clone deep-copies the chain so the copy shares no block memory with the
// original.
func (c *Chain) Clone() *Chain { return c.Fork(len(c.Blocks)) }

// Fork deep-copies the first upto blocks into a new chain with the same
// mining parameters. Fork(Height()) is a full clone; a shorter prefix seeds
// a divergent chain.
func (c *Chain) Fork(upto int) *Chain {
	if upto < 0 {
		upto = 0
	}
	if upto > len(c.Blocks) {
		upto = len(c.Blocks)
	}

	blocks := make([]*Block, 0, upto)
	for _, b := range c.Blocks[:upto] {
		blocks = append(blocks, b.Clone())
	}

	return &Chain{
		Difficulty:  c.Difficulty,
		MaxAttempts: c.MaxAttempts,
		Blocks:      blocks,
	}
}

// BlockHashes returns the ordered block hashes.
func (c *Chain) BlockHashes() [][]byte {
	out := make([][]byte, len(c.Blocks))
	for i, b := range c.Blocks {
		out[i] = b.Hash[:]
	}
	return out
}

// Fingerprint condenses the ordered block hashes into a single digest via
// the merkle tree, so two replicas agree exactly when every block hash
// agrees.
func (c *Chain) Fingerprint() chainhash.Hash {
	return ComputeMerkleRoot(c.BlockHashes())
}
