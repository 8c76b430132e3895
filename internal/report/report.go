// Package report turns network state and consensus outcomes into the
// structured findings the presentation layer renders. It is a pure
// transform: no mutation, no I/O.
package report

import (
	"encoding/hex"

	"github.com/thanhnp/chain-sim/internal/models"
	"github.com/thanhnp/chain-sim/internal/network"
)

// Build lists, per node, local chain validity, divergence from the majority
// group, and the node's attack role when an attack record is supplied.
func Build(net *network.Network, consensus models.ConsensusReport, attack *models.AttackRecord) models.Findings {
	attackerSet := make(map[string]bool)
	if attack != nil {
		for _, id := range attack.Attackers {
			attackerSet[id] = true
		}
	}

	findings := models.Findings{
		NetworkID: net.ID,
		Consensus: consensus,
		Attack:    attack,
		Corrupted: net.DetectCorrupted(consensus),
	}

	for _, node := range net.Nodes {
		res := node.Chain.Validate()

		finding := models.NodeFinding{
			NodeID:               node.ID,
			Valid:                res.Valid,
			FailedIndex:          res.FailedIndex,
			Violation:            string(res.Violation),
			DivergedFromMajority: !consensus.NoMajority && node.FingerprintHex() != consensus.MajorityFingerprint,
			ChainLength:          node.Chain.Height(),
		}
		if tip := node.Chain.Tip(); tip != nil {
			finding.TipHash = hex.EncodeToString(tip.Hash[:])
		}
		if attack != nil {
			finding.Role = models.RoleHonest
			if attackerSet[node.ID] {
				finding.Role = models.RoleAttacker
			}
		}

		findings.Nodes = append(findings.Nodes, finding)
	}

	return findings
}
