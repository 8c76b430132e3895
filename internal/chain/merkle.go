package chain

import "github.com/btcsuite/btcd/chaincfg/chainhash"

// ComputeMerkleRoot builds a binary hash tree over the payload items and
// returns its root. Leaves are the digests of each item in order; each level
// hashes the concatenation of adjacent pairs, duplicating a trailing odd
// node to keep the tree balanced. The empty payload maps to the digest of
// the empty byte string. Ordering matters: swapping two distinct items
// changes the root, which is what lets the tree detect reordering.
func ComputeMerkleRoot(payload [][]byte) chainhash.Hash {
	if len(payload) == 0 {
		return chainhash.HashH(nil)
	}

	level := make([]chainhash.Hash, len(payload))
	for i, item := range payload {
		level[i] = chainhash.HashH(item)
	}

	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
		}

		next := make([]chainhash.Hash, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			joined := make([]byte, 0, chainhash.HashSize*2)
			joined = append(joined, level[i][:]...)
			joined = append(joined, level[i+1][:]...)
			next = append(next, chainhash.HashH(joined))
		}
		level = next
	}

	return level[0]
}
