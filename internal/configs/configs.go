/*
Package configs loads and parses the application's configuration settings.

All values come from environment variables, with development-friendly
defaults: running environment, port, CORS allowed origins, the visitor dwell
duration, and demo seeding.
*/
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig contains every runtime setting the server needs.
type AppConfig struct {
	// General Server Settings
	Environment string
	Port        int

	// Security Settings
	AllowedOrigins []string

	// Plaza Settings
	// DwellDuration is how long each visitor is displayed in a viewing session.
	DwellDuration time.Duration

	// SeedDemoUsers populates a few demo visitors at startup when true.
	SeedDemoUsers bool
}

// LoadConfig reads the configuration from environment variables, applying
// defaults and validating values. Returns the config or the first error hit.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}

	// --- General Server Settings ---
	// Environment
	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	// Port
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT environment variable: %w", err)
	}
	cfg.Port = port

	if cfg.Port < 1024 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", cfg.Port, 1024, 65535)
	}

	// --- Security Settings ---
	// AllowedOrigins
	originsStr := os.Getenv("ALLOWED_ORIGINS")
	if originsStr != "" {
		origins := strings.Split(originsStr, ",")
		for _, origin := range origins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	} else {
		cfg.AllowedOrigins = []string{}
	}

	// --- Plaza Settings ---
	// DwellDuration
	dwellStr := os.Getenv("DWELL_DURATION_MS")
	if dwellStr == "" {
		dwellStr = "6000"
	}
	dwellMs, err := strconv.Atoi(dwellStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DWELL_DURATION_MS environment variable: %w", err)
	}
	if dwellMs <= 0 {
		return nil, fmt.Errorf("DWELL_DURATION_MS must be positive, got %d", dwellMs)
	}
	cfg.DwellDuration = time.Duration(dwellMs) * time.Millisecond

	// SeedDemoUsers
	seedStr := os.Getenv("SEED_DEMO_USERS")
	if seedStr == "" {
		cfg.SeedDemoUsers = cfg.Environment == "development"
	} else {
		seed, err := strconv.ParseBool(seedStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SEED_DEMO_USERS environment variable: %w", err)
		}
		cfg.SeedDemoUsers = seed
	}

	return cfg, nil
}
