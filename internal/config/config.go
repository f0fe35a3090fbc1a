package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries the settings the demo binary needs.
type Config struct {
	// Secret signs session tokens.
	Secret string
	// StorePath is where the local token storage file lives.
	StorePath string
	// Latency is the simulated per-call latency of the data store.
	Latency time.Duration
}

// Load reads an optional .env file, then the FINBOOK_* environment
// variables, applying defaults for anything unset. A missing .env is not
// an error.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("loading .env: %v", err)
	}

	cfg := Config{
		Secret:    "finbook-dev-secret",
		StorePath: "finbook.db",
		Latency:   500 * time.Millisecond,
	}
	if v := os.Getenv("FINBOOK_SECRET"); v != "" {
		cfg.Secret = v
	}
	if v := os.Getenv("FINBOOK_STORE_PATH"); v != "" {
		cfg.StorePath = v
	}
	if v := os.Getenv("FINBOOK_LATENCY_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			cfg.Latency = time.Duration(ms) * time.Millisecond
		}
	}
	return cfg
}
