package chain

import (
	"bytes"
	"strconv"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// ZeroHash is the previous-hash sentinel carried by a genesis block.
var ZeroHash chainhash.Hash

// Block is a single unit of the chain. Nonce and Hash are written only while
// mining; once sealed the block is read-only by convention, and any later
// payload change is detectable through Chain.Validate.
type Block struct {
	Index        uint64
	Timestamp    int64
	Payload      [][]byte
	MerkleRoot   chainhash.Hash
	PreviousHash chainhash.Hash
	Nonce        uint64
	Hash         chainhash.Hash

	sealed bool
}

// NewBlock assembles an unsealed block linked to prevHash. The merkle root
// over the payload is fixed here; the hash becomes final when mining seals
// the block.
func NewBlock(index uint64, timestamp int64, payload [][]byte, prevHash chainhash.Hash) *Block {
	return &Block{
		Index:        index,
		Timestamp:    timestamp,
		Payload:      clonePayload(payload),
		MerkleRoot:   ComputeMerkleRoot(payload),
		PreviousHash: prevHash,
	}
}

func intToHex(n int64) []byte {
	return []byte(strconv.FormatInt(n, 16))
}

// hashInput joins the header fields the block hash commits to.
func (b *Block) hashInput(nonce uint64) []byte {
	return bytes.Join(
		[][]byte{
			intToHex(int64(b.Index)),
			intToHex(b.Timestamp),
			b.MerkleRoot[:],
			b.PreviousHash[:],
			intToHex(int64(nonce)),
		},
		[]byte{},
	)
}

// ComputeHash returns the digest of the block header for the current nonce.
// It never mutates the block.
func (b *Block) ComputeHash() chainhash.Hash {
	return chainhash.HashH(b.hashInput(b.Nonce))
}

// seal freezes nonce and hash. Idempotent for the same nonce.
func (b *Block) seal(nonce uint64, hash chainhash.Hash) {
	if b.sealed && b.Nonce == nonce {
		return
	}
	b.Nonce = nonce
	b.Hash = hash
	b.sealed = true
}

// Sealed reports whether mining has frozen the block.
func (b *Block) Sealed() bool { return b.sealed }

// Clone returns a deep copy sharing no payload memory with the original.
func (b *Block) Clone() *Block {
	dup := *b
	dup.Payload = clonePayload(b.Payload)
	return &dup
}

func clonePayload(payload [][]byte) [][]byte {
	if payload == nil {
		return nil
	}
	out := make([][]byte, len(payload))
	for i, item := range payload {
		out[i] = append([]byte(nil), item...)
	}
	return out
}
