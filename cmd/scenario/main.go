// Command scenario runs the canned integrity demonstration: healthy
// replication, minority corruption, and a 51% takeover, rendering the
// findings the core produces.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/fatih/color"

	"github.com/thanhnp/chain-sim/internal/config"
	"github.com/thanhnp/chain-sim/internal/models"
	"github.com/thanhnp/chain-sim/internal/simulator"
	"github.com/thanhnp/chain-sim/internal/storage"
)

var (
	header = color.New(color.FgCyan, color.Bold).PrintfFunc()
	good   = color.New(color.FgGreen).SprintFunc()
	bad    = color.New(color.FgRed).SprintFunc()
	warn   = color.New(color.FgYellow).SprintFunc()
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	size := flag.Int("size", 0, "Network size (0 = configured default)")
	ratio := flag.Float64("ratio", 0, "Attacker ratio (0 = configured default)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *size > 0 {
		cfg.Simulation.NetworkSize = *size
	}
	if *ratio > 0 {
		cfg.Simulation.AttackerRatio = *ratio
	}

	db, err := storage.NewMemoryDB()
	if err != nil {
		log.Fatalf("Failed to open in-memory database: %v", err)
	}
	defer db.Close()

	svc := simulator.New(cfg.Simulation, simulator.NewStores(db))

	seedID, err := svc.CreateNode(-1)
	if err != nil {
		log.Fatalf("Failed to create seed node: %v", err)
	}
	for i := 0; i < cfg.Simulation.SeedBlocks; i++ {
		payload := []string{fmt.Sprintf("Transaction %d", i)}
		if _, err := svc.AppendBlock(seedID, payload); err != nil {
			log.Fatalf("Failed to append block %d: %v", i, err)
		}
	}

	header("=== Healthy replication (%d peers) ===\n", cfg.Simulation.NetworkSize)
	info, err := svc.SpawnNetwork(cfg.Simulation.NetworkSize, seedID)
	if err != nil {
		log.Fatalf("Failed to spawn network: %v", err)
	}
	printFindings(mustFindings(svc, info.ID))

	header("\n=== Minority corruption (1 peer tampered) ===\n")
	victim := info.NodeIDs[0]
	if err := svc.CorruptNode(victim, 2, []string{"tampered transaction"}); err != nil {
		log.Fatalf("Failed to corrupt node: %v", err)
	}
	printFindings(mustFindings(svc, info.ID))

	header("\n=== 51%% attack (ratio %.2f) ===\n", cfg.Simulation.AttackerRatio)
	attackNet, err := svc.SpawnNetwork(cfg.Simulation.NetworkSize, seedID)
	if err != nil {
		log.Fatalf("Failed to spawn attack network: %v", err)
	}
	record, err := svc.RunAttackSimulation(attackNet.ID, cfg.Simulation.AttackerRatio)
	if err != nil {
		log.Fatalf("Failed to run attack simulation: %v", err)
	}
	printAttack(record)
	printFindings(mustFindings(svc, attackNet.ID))
}

func mustFindings(svc *simulator.Service, networkID string) models.Findings {
	findings, err := svc.GetFindings(networkID)
	if err != nil {
		log.Fatalf("Failed to get findings: %v", err)
	}
	return findings
}

func printAttack(record models.AttackRecord) {
	outcome := bad("TAKEOVER")
	if record.Outcome == models.AttackFailed {
		outcome = good("FAILED")
	}
	fmt.Printf("attackers=%d diverge=%d honest_len=%d attacker_len=%d outcome=%s\n",
		len(record.Attackers), record.DivergeIndex, record.HonestLength, record.AttackerLength, outcome)
}

func printFindings(findings models.Findings) {
	if findings.Consensus.NoMajority {
		fmt.Printf("consensus: %s\n", warn("no majority"))
	} else {
		fmt.Printf("consensus: majority of %d/%d on %s\n",
			findings.Consensus.MajorityCount, findings.Consensus.TotalNodes,
			shortHash(findings.Consensus.MajorityFingerprint))
	}

	for i, f := range findings.Nodes {
		verdict := good("accepted")
		if !f.Valid || f.DivergedFromMajority {
			verdict = bad("rejected")
		}

		detail := ""
		if !f.Valid {
			detail = fmt.Sprintf(" invalid at block %d (%s)", f.FailedIndex, f.Violation)
		} else if f.DivergedFromMajority {
			detail = " diverged from majority"
		}
		if f.Role != "" {
			detail += fmt.Sprintf(" [%s]", f.Role)
		}

		fmt.Printf("  peer %d  %s  len=%d tip=%s %s%s\n",
			i+1, shortHash(f.NodeID), f.ChainLength, shortHash(f.TipHash), verdict, detail)
	}
}

func shortHash(s string) string {
	if len(s) > 10 {
		return s[:10] + "..."
	}
	return s
}
