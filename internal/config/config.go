// Package config loads scan configuration from an optional JSON file
// plus the environment. A .env file in the working directory is picked
// up automatically, which keeps API keys out of configs and shell
// history.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/contactkeval/option-scan/internal/logger"
)

// Config holds everything a scan run needs.
type Config struct {
	Tickers  []string `json:"tickers"`
	Provider string   `json:"provider"` // "yahoo", "massive", or "synthetic"

	MaxExpirations int `json:"max_expirations"` // 0 = all
	Concurrency    int `json:"concurrency"`

	ReturnFilter   bool    `json:"return_filter"`
	CallsThreshold float64 `json:"calls_threshold"` // min annualized call return, percent
	PutsThreshold  float64 `json:"puts_threshold"`  // min annualized put return, percent
	IncludeITM     bool    `json:"include_itm"`

	ReportDir string `json:"report_dir"`
	Verbosity int    `json:"verbosity"`

	// MassiveAPIKey comes from the environment only, never the file.
	MassiveAPIKey string `json:"-"`
}

// Default returns the built-in configuration: Yahoo data, the
// return-filter thresholds the scan has always used, out-of-the-money
// strikes only.
func Default() *Config {
	return &Config{
		Provider:       "yahoo",
		MaxExpirations: 0,
		Concurrency:    4,
		ReturnFilter:   true,
		CallsThreshold: 7.0,
		PutsThreshold:  15.0,
		IncludeITM:     false,
		ReportDir:      "reports",
		Verbosity:      1,
	}
}

// Load builds a Config from defaults, an optional JSON file, and the
// environment, in that order of precedence.
func Load(path string) (*Config, error) {
	// Missing .env is fine; it is a convenience, not a requirement.
	if err := godotenv.Load(); err == nil {
		logger.Debugf("loaded environment from .env")
	}

	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := json.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("invalid config %s: %w", path, err)
		}
	}

	cfg.MassiveAPIKey = os.Getenv("MASSIVE_API_KEY")
	if cfg.MassiveAPIKey == "" {
		// The key predates the Massive rename at some data vendors.
		cfg.MassiveAPIKey = os.Getenv("POLYGON_API_KEY")
	}

	return cfg, nil
}
