package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Pebble     PebbleConfig     `yaml:"pebble"`
	Simulation SimulationConfig `yaml:"simulation"`
}

// ServerConfig represents the HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// PebbleConfig represents the Pebble database configuration. InMemory is the
// default: the simulator persists nothing to disk unless asked to.
type PebbleConfig struct {
	Path     string `yaml:"path"`
	InMemory bool   `yaml:"in_memory"`
}

// SimulationConfig represents the integrity-simulation parameters.
type SimulationConfig struct {
	Difficulty       int     `yaml:"difficulty"`        // leading zero hex digits required of a block hash
	MaxAttempts      uint64  `yaml:"max_attempts"`      // nonce search cap per block
	NetworkSize      int     `yaml:"network_size"`      // peers spawned per network
	SeedBlocks       int     `yaml:"seed_blocks"`       // blocks appended to the seed chain in demos
	AttackerRatio    float64 `yaml:"attacker_ratio"`    // fraction of peers an attack takes over
	GenesisTimestamp int64   `yaml:"genesis_timestamp"` // logical timestamp of genesis blocks
}

// Load loads configuration from a YAML file and environment variables
func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: 8080,
			Host: "0.0.0.0",
		},
		Pebble: PebbleConfig{
			Path:     "./data/pebble",
			InMemory: true,
		},
		Simulation: SimulationConfig{
			Difficulty:       2,
			MaxAttempts:      1 << 24,
			NetworkSize:      5,
			SeedBlocks:       3,
			AttackerRatio:    0.6,
			GenesisTimestamp: 1000,
		},
	}

	// Load from YAML file if it exists
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables
	cfg.loadEnv()

	return cfg, nil
}

func (c *Config) loadEnv() {
	// Server config
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		c.Server.Host = host
	}

	// Pebble config
	if path := os.Getenv("PEBBLE_PATH"); path != "" {
		c.Pebble.Path = path
	}
	if inMemory := os.Getenv("PEBBLE_IN_MEMORY"); inMemory != "" {
		c.Pebble.InMemory = inMemory == "true" || inMemory == "1"
	}

	// Simulation config
	if difficulty := os.Getenv("SIM_DIFFICULTY"); difficulty != "" {
		if d, err := strconv.Atoi(difficulty); err == nil {
			c.Simulation.Difficulty = d
		}
	}
	if attempts := os.Getenv("SIM_MAX_ATTEMPTS"); attempts != "" {
		if a, err := strconv.ParseUint(attempts, 10, 64); err == nil {
			c.Simulation.MaxAttempts = a
		}
	}
	if size := os.Getenv("SIM_NETWORK_SIZE"); size != "" {
		if s, err := strconv.Atoi(size); err == nil {
			c.Simulation.NetworkSize = s
		}
	}
	if blocks := os.Getenv("SIM_SEED_BLOCKS"); blocks != "" {
		if b, err := strconv.Atoi(blocks); err == nil {
			c.Simulation.SeedBlocks = b
		}
	}
	if ratio := os.Getenv("SIM_ATTACKER_RATIO"); ratio != "" {
		if r, err := strconv.ParseFloat(ratio, 64); err == nil {
			c.Simulation.AttackerRatio = r
		}
	}
	if ts := os.Getenv("SIM_GENESIS_TIMESTAMP"); ts != "" {
		if t, err := strconv.ParseInt(ts, 10, 64); err == nil {
			c.Simulation.GenesisTimestamp = t
		}
	}
}
