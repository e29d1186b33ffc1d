// Package config loads and saves the abistudio settings file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultChain          = "ethereum"
	defaultReceiptTimeout = 3 * time.Minute
	defaultPollInterval   = 2 * time.Second
	defaultLogLevel       = "warn"

	envPrefix     = "ABISTUDIO"
	configFile    = "config.json"
	contractsFile = "contracts.json"
	chainsFile    = "chains.toml"
)

// DefaultDir returns ~/.abistudio.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home dir: %w", err)
	}
	return filepath.Join(home, ".abistudio"), nil
}

// Load reads config.json from dir (default ~/.abistudio) on top of the
// defaults. ABISTUDIO_* environment variables override both, e.g.
// ABISTUDIO_DEFAULT_CHAIN=base.
func Load(dir string) (*Config, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	v := viper.New()
	setDefaults(v, dir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := filepath.Join(dir, configFile)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.RPCOverrides == nil {
		cfg.RPCOverrides = make(map[string][]string)
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.ReceiptTimeout < 0 {
		return nil, fmt.Errorf("receipt_timeout must not be negative, got %s", cfg.ReceiptTimeout)
	}
	cfg.configDir = dir
	return &cfg, nil
}

func setDefaults(v *viper.Viper, dir string) {
	v.SetDefault("default_chain", defaultChain)
	v.SetDefault("rpc_overrides", map[string][]string{})
	v.SetDefault("wallet", "")
	v.SetDefault("explorer_api_key", "")
	v.SetDefault("receipt_timeout", defaultReceiptTimeout)
	v.SetDefault("poll_interval", defaultPollInterval)
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("chains_file", filepath.Join(dir, chainsFile))
}

// fileConfig is the on-disk layout; durations are written as "3m0s".
type fileConfig struct {
	DefaultChain   string              `json:"default_chain"`
	RPCOverrides   map[string][]string `json:"rpc_overrides,omitempty"`
	Wallet         string              `json:"wallet,omitempty"`
	ExplorerAPIKey string              `json:"explorer_api_key,omitempty"`
	ReceiptTimeout string              `json:"receipt_timeout"`
	PollInterval   string              `json:"poll_interval"`
	LogLevel       string              `json:"log_level"`
	ChainsFile     string              `json:"chains_file,omitempty"`
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(fileConfig{
		DefaultChain:   c.DefaultChain,
		RPCOverrides:   c.RPCOverrides,
		Wallet:         c.Wallet,
		ExplorerAPIKey: c.ExplorerAPIKey,
		ReceiptTimeout: c.ReceiptTimeout.String(),
		PollInterval:   c.PollInterval.String(),
		LogLevel:       c.LogLevel,
		ChainsFile:     c.ChainsFile,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// AddRPC adds a custom RPC URL for a chain.
func (c *Config) AddRPC(chain, url string) error {
	if c.RPCOverrides == nil {
		c.RPCOverrides = make(map[string][]string)
	}
	if slices.Contains(c.RPCOverrides[chain], url) {
		return fmt.Errorf("RPC %s already exists for chain %s", url, chain)
	}
	c.RPCOverrides[chain] = append(c.RPCOverrides[chain], url)
	return nil
}

// RemoveRPC removes a custom RPC URL for a chain.
func (c *Config) RemoveRPC(chain, url string) error {
	rpcs := c.RPCOverrides[chain]
	idx := slices.Index(rpcs, url)
	if idx == -1 {
		return fmt.Errorf("RPC %s not found for chain %s", url, chain)
	}
	c.RPCOverrides[chain] = slices.Delete(rpcs, idx, idx+1)
	if len(c.RPCOverrides[chain]) == 0 {
		delete(c.RPCOverrides, chain)
	}
	return nil
}

// GetRPCs returns custom RPCs for a chain.
func (c *Config) GetRPCs(chain string) []string {
	return c.RPCOverrides[chain]
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// ContractsPath is the contract bookmark file.
func (c *Config) ContractsPath() string {
	return filepath.Join(c.configDir, contractsFile)
}
