// Package config loads the wirescope configuration from the
// environment and from an optional .env file.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/wirescope/wirescope/internal/kvstore"
)

// Config contains the settings of the API server and of the CLI.
type Config struct {
	// Host is the address where the API server listens.
	Host string

	// Port is the port where the API server listens.
	Port uint16

	// FrontendPath is the OPTIONAL directory containing the SPA.
	FrontendPath string

	// ProxyDisabled disables request execution.
	ProxyDisabled bool

	// DNSServer is the OPTIONAL ip:port of a DNS server to use
	// instead of the system resolver.
	DNSServer string

	// KVStore is the key/value store backend.
	KVStore string

	// KVStorePath is the directory containing the key/value store.
	KVStorePath string

	// RateLimitRPS is the number of /api/proxy requests per second
	// each client may issue. Zero disables rate limiting.
	RateLimitRPS float64

	// RateLimitBurst is the token bucket size.
	RateLimitBurst int

	// PrometheusAddr is the OPTIONAL endpoint serving metrics.
	PrometheusAddr string

	// Debug enables verbose logging.
	Debug bool
}

// Load reads the given .env files, or ./.env when no file is given,
// and then builds a Config from the environment. A missing .env file
// is not an error. Variables already set in the environment take
// precedence over the ones in .env files.
func Load(envfiles ...string) (*Config, error) {
	_ = godotenv.Load(envfiles...)

	cfg := &Config{
		Host:           getEnv("HOST", "0.0.0.0"),
		FrontendPath:   getEnv("FRONTEND_PATH", ""),
		DNSServer:      getEnv("DNS_SERVER", ""),
		KVStore:        getEnv("KVSTORE", kvstore.BackendSQLite),
		KVStorePath:    getEnv("KVSTORE_PATH", defaultKVStorePath()),
		PrometheusAddr: getEnv("PROMETHEUS", ""),
	}

	port, err := strconv.ParseUint(getEnv("PORT", "3000"), 10, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	cfg.Port = uint16(port)

	if cfg.ProxyDisabled, err = parseBool("PROXY_DISABLED"); err != nil {
		return nil, err
	}
	if cfg.Debug, err = parseBool("DEBUG"); err != nil {
		return nil, err
	}

	cfg.RateLimitRPS, err = strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "0"), 64)
	if err != nil || cfg.RateLimitRPS < 0 {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %s", os.Getenv("RATE_LIMIT_RPS"))
	}

	cfg.RateLimitBurst, err = strconv.Atoi(getEnv("RATE_LIMIT_BURST", "1"))
	if err != nil || cfg.RateLimitBurst < 1 {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %s", os.Getenv("RATE_LIMIT_BURST"))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that may also be changed from the
// command line after loading the environment.
func (c *Config) Validate() error {
	switch c.KVStore {
	case kvstore.BackendSQLite, kvstore.BackendFS, kvstore.BackendMemory:
	default:
		return fmt.Errorf("invalid KVSTORE: %s", c.KVStore)
	}
	if c.DNSServer != "" {
		if _, _, err := net.SplitHostPort(c.DNSServer); err != nil {
			return fmt.Errorf("invalid DNS_SERVER: %w", err)
		}
	}
	return nil
}

// Address returns the host:port where the API server should listen.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(int(c.Port)))
}

func defaultKVStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".wirescope"
	}
	return filepath.Join(home, ".wirescope")
}

func parseBool(key string) (bool, error) {
	value, err := strconv.ParseBool(getEnv(key, "false"))
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
