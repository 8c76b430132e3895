// Package attack forges majority-power ("51%") takeovers against a simulated
// network: it replaces the chains of a chosen subset of peers with an
// internally valid, strictly longer alternative and re-runs the consensus
// comparison.
package attack

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/thanhnp/chain-sim/internal/chain"
	"github.com/thanhnp/chain-sim/internal/models"
	"github.com/thanhnp/chain-sim/internal/network"
)

// ErrEmptyNetwork reports an attack on a network with no peers.
var ErrEmptyNetwork = errors.New("attack: network has no nodes")

// Run selects ceil(ratio*size) peers, replaces each one's chain with a
// forged alternative diverging at divergeIndex, and re-runs the comparison.
// The forged chain passes every chain invariant and is strictly longer than
// the honest chain, per the longest-valid-chain takeover rule. The outcome
// is a takeover only when the attacker group ends up the strict majority;
// a sub-majority attack still replaces the selected chains but is reported
// as failed, since the honest group keeps winning the comparison.
func Run(net *network.Network, ratio float64, divergeIndex int) (models.AttackRecord, error) {
	size := net.Size()
	if size == 0 {
		return models.AttackRecord{}, ErrEmptyNetwork
	}

	honest, err := honestChain(net)
	if err != nil {
		return models.AttackRecord{}, err
	}
	honestLen := honest.Height()

	if divergeIndex < 1 || divergeIndex >= honestLen {
		return models.AttackRecord{}, fmt.Errorf("attack: diverge index %d out of range [1,%d)", divergeIndex, honestLen)
	}

	attackers := int(math.Ceil(ratio * float64(size)))
	if attackers < 0 {
		attackers = 0
	}
	if attackers > size {
		attackers = size
	}

	forged, err := forge(honest, divergeIndex)
	if err != nil {
		return models.AttackRecord{}, err
	}

	record := models.AttackRecord{
		NetworkID:      net.ID,
		Alteration:     models.AlterationChainReplaced,
		DivergeIndex:   divergeIndex,
		HonestLength:   honestLen,
		AttackerLength: forged.Height(),
	}

	for _, node := range net.Nodes[:attackers] {
		node.Chain = forged.Clone()
		record.Attackers = append(record.Attackers, node.ID)
	}

	record.Consensus = net.Compare()

	forgedFP := forged.Fingerprint()
	record.Outcome = models.AttackFailed
	if !record.Consensus.NoMajority &&
		record.Consensus.MajorityFingerprint == hex.EncodeToString(forgedFP[:]) &&
		2*record.Consensus.MajorityCount > size {
		record.Outcome = models.AttackTakeover
	}

	slog.Info("attack simulated",
		"network", net.ID,
		"attackers", attackers,
		"diverge_index", divergeIndex,
		"outcome", record.Outcome)

	return record, nil
}

// honestChain picks the reference chain the forgery diverges from: the chain
// of any member of the current majority group, or the first peer when the
// comparison is tied.
func honestChain(net *network.Network) (*chain.Chain, error) {
	report := net.Compare()
	if report.NoMajority || len(report.Groups) == 0 {
		return net.Nodes[0].Chain, nil
	}

	node := net.Node(report.Groups[0].Members[0])
	if node == nil {
		return nil, fmt.Errorf("attack: majority member %s not registered", report.Groups[0].Members[0])
	}
	return node.Chain, nil
}

// forge builds the attacker chain: the honest prefix up to divergeIndex,
// then freshly mined blocks until the result is strictly longer than the
// honest chain.
func forge(honest *chain.Chain, divergeIndex int) (*chain.Chain, error) {
	forged := honest.Fork(divergeIndex)

	ts := honest.Tip().Timestamp
	for i := 0; forged.Height() <= honest.Height(); i++ {
		ts++
		payload := [][]byte{[]byte(fmt.Sprintf("forged %d", i))}
		if _, err := forged.Append(payload, ts); err != nil {
			return nil, fmt.Errorf("attack: forging block %d: %w", i, err)
		}
	}
	return forged, nil
}
