package chain

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// DefaultMaxAttempts bounds the nonce search when callers pass no cap.
const DefaultMaxAttempts = 1 << 24

// ErrMiningExhausted reports that the nonce search hit its attempts cap
// before finding a qualifying hash. Recoverable: raise the cap or lower the
// difficulty and retry.
var ErrMiningExhausted = errors.New("mining exhausted: attempts cap reached")

// ProofOfWork binds a block to a difficulty target. Difficulty counts the
// leading zero hex digits required of the block hash, checked numerically as
// hash < 1<<(256-4*difficulty).
type ProofOfWork struct {
	block  *Block
	target *big.Int
}

// NewProofOfWork prepares the search target for the given difficulty.
// Difficulty is clamped to [0, 64]; 64 zero hex digits already means the
// all-zero digest.
func NewProofOfWork(b *Block, difficulty int) *ProofOfWork {
	if difficulty < 0 {
		difficulty = 0
	}
	if difficulty > 64 {
		difficulty = 64
	}

	target := big.NewInt(1)
	target.Lsh(target, uint(256-4*difficulty))

	return &ProofOfWork{block: b, target: target}
}

// Run searches nonces from 0 upward until the hash meets the target or the
// attempts cap is hit. The search is exhaustive and deterministic: the same
// block at the same difficulty always seals with the lowest qualifying
// nonce, which keeps simulations reproducible.
func (pow *ProofOfWork) Run(maxAttempts uint64) (uint64, chainhash.Hash, error) {
	if maxAttempts == 0 {
		maxAttempts = DefaultMaxAttempts
	}

	var hashInt big.Int
	for nonce := uint64(0); nonce < maxAttempts; nonce++ {
		hash := chainhash.HashH(pow.block.hashInput(nonce))
		hashInt.SetBytes(hash[:])

		if hashInt.Cmp(pow.target) == -1 {
			return nonce, hash, nil
		}
	}

	return 0, chainhash.Hash{}, fmt.Errorf("%w after %d attempts", ErrMiningExhausted, maxAttempts)
}

// Validate recomputes the block hash for the sealed nonce and checks that it
// both matches the stored hash and meets the difficulty target.
func (pow *ProofOfWork) Validate() bool {
	hash := pow.block.ComputeHash()
	if !hash.IsEqual(&pow.block.Hash) {
		return false
	}

	var hashInt big.Int
	hashInt.SetBytes(hash[:])
	return hashInt.Cmp(pow.target) == -1
}

// Mine runs the proof of work for the block and seals it on success.
func Mine(b *Block, difficulty int, maxAttempts uint64) error {
	pow := NewProofOfWork(b, difficulty)
	nonce, hash, err := pow.Run(maxAttempts)
	if err != nil {
		return err
	}
	b.seal(nonce, hash)
	return nil
}
