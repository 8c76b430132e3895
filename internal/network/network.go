package network

import (
	"encoding/hex"
	"sort"

	"github.com/google/uuid"

	"github.com/thanhnp/chain-sim/internal/chain"
	"github.com/thanhnp/chain-sim/internal/models"
)

// Network is a registry of simulated peers. It holds non-owning references
// for comparison only; all chain mutation goes through the owning node's
// chain or the attack simulator.
type Network struct {
	ID    string
	Nodes []*Node
}

// Spawn deep-clones the seed chain into size independent peers, modelling
// healthy replication of one reference chain.
func Spawn(size int, seed *chain.Chain) *Network {
	net := &Network{ID: uuid.NewString()}
	for i := 0; i < size; i++ {
		net.Nodes = append(net.Nodes, NewNode(seed.Clone()))
	}
	return net
}

// Node returns the registered peer with the given id, or nil.
func (n *Network) Node(id string) *Node {
	for _, node := range n.Nodes {
		if node.ID == id {
			return node
		}
	}
	return nil
}

// Size returns the number of registered peers.
func (n *Network) Size() int { return len(n.Nodes) }

func fingerprintHex(c *chain.Chain) string {
	fp := c.Fingerprint()
	return hex.EncodeToString(fp[:])
}

// Compare groups peers by chain fingerprint and elects the group with the
// strictly largest member count as the majority. A tie for the largest group
// is reported as NoMajority, never resolved arbitrarily.
func (n *Network) Compare() models.ConsensusReport {
	members := make(map[string][]string)
	for _, node := range n.Nodes {
		fp := fingerprintHex(node.Chain)
		members[fp] = append(members[fp], node.ID)
	}

	groups := make([]models.ConsensusGroup, 0, len(members))
	for fp, ids := range members {
		groups = append(groups, models.ConsensusGroup{
			Fingerprint: fp,
			Count:       len(ids),
			Members:     ids,
		})
	}
	// Largest group first; fingerprint order keeps equal counts stable.
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Fingerprint < groups[j].Fingerprint
	})

	report := models.ConsensusReport{
		NetworkID:  n.ID,
		TotalNodes: len(n.Nodes),
		Groups:     groups,
	}

	switch {
	case len(groups) == 0:
		report.NoMajority = true
	case len(groups) > 1 && groups[0].Count == groups[1].Count:
		report.NoMajority = true
	default:
		report.MajorityFingerprint = groups[0].Fingerprint
		report.MajorityCount = groups[0].Count
	}

	return report
}

// DetectCorrupted returns every peer that fails its own chain validation or
// whose fingerprint diverges from the majority group, in registry order. An
// internally valid chain is still flagged when it disagrees with the honest
// majority. When the comparison is tied, only the local validity signal
// applies.
func (n *Network) DetectCorrupted(report models.ConsensusReport) []string {
	var corrupted []string
	for _, node := range n.Nodes {
		res := node.Chain.Validate()
		diverged := !report.NoMajority && fingerprintHex(node.Chain) != report.MajorityFingerprint
		if !res.Valid || diverged {
			corrupted = append(corrupted, node.ID)
		}
	}
	return corrupted
}
