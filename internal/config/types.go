package config

import "time"

// Config holds all abistudio configuration.
type Config struct {
	DefaultChain   string              `json:"default_chain"    mapstructure:"default_chain"`
	RPCOverrides   map[string][]string `json:"rpc_overrides"    mapstructure:"rpc_overrides"` // chain slug -> URLs tried before the registry's
	Wallet         string              `json:"wallet"           mapstructure:"wallet"`        // keychain name of the signing key
	ExplorerAPIKey string              `json:"explorer_api_key" mapstructure:"explorer_api_key"`
	ReceiptTimeout time.Duration       `json:"receipt_timeout"  mapstructure:"receipt_timeout"` // 0 waits until interrupted
	PollInterval   time.Duration       `json:"poll_interval"    mapstructure:"poll_interval"`
	LogLevel       string              `json:"log_level"        mapstructure:"log_level"`
	ChainsFile     string              `json:"chains_file"      mapstructure:"chains_file"` // TOML chain overlay

	// internal: config dir path used for Save()
	configDir string
}
