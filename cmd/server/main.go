package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/thanhnp/chain-sim/internal/api"
	"github.com/thanhnp/chain-sim/internal/config"
	"github.com/thanhnp/chain-sim/internal/simulator"
	"github.com/thanhnp/chain-sim/internal/storage"
	"github.com/thanhnp/chain-sim/pkg/semver"
)

const appVersion = "1.0.0"

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ver, err := semver.Parse(appVersion)
	if err != nil {
		log.Fatalf("Invalid application version: %v", err)
	}
	log.Printf("Starting Chain Simulator server v%s...", ver)

	// Open the Pebble database (in-memory unless persistence was requested)
	var db *storage.PebbleDB
	if cfg.Pebble.InMemory {
		log.Println("Opening in-memory Pebble database")
		db, err = storage.NewMemoryDB()
	} else {
		log.Printf("Opening Pebble database at %s", cfg.Pebble.Path)
		db, err = storage.NewPebbleDB(cfg.Pebble.Path)
	}
	if err != nil {
		log.Fatalf("Failed to open Pebble database: %v", err)
	}
	defer db.Close()

	// Build the simulator service and the API on top of it
	stores := simulator.NewStores(db)
	svc := simulator.New(cfg.Simulation, stores)
	router := api.NewRouter(svc, stores.Blocks, ver.String())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router.Engine(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("API server listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("API server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
