package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "ONEDREAM"

type Config struct {
	LogLevel  string          `mapstructure:"log-level"`
	RPC       RPCConfig       `mapstructure:"rpc"`
	Contracts ContractsConfig `mapstructure:"contracts"`
	Scanner   ScannerConfig   `mapstructure:"scanner"`
	Multicall MulticallConfig `mapstructure:"multicall"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Db        DbConfig        `mapstructure:"db"`
	Market    MarketConfig    `mapstructure:"market"`
	Poller    PollerConfig    `mapstructure:"poller"`
	Server    ServerConfig    `mapstructure:"server"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Signer    SignerConfig    `mapstructure:"signer"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel:  "info",
		RPC:       *DefaultRPCConfig(),
		Contracts: *DefaultContractsConfig(),
		Scanner:   *DefaultScannerConfig(),
		Multicall: *DefaultMulticallConfig(),
		Cache:     *DefaultCacheConfig(),
		Db:        *DefaultDbConfig(),
		Market:    *DefaultMarketConfig(),
		Poller:    *DefaultPollerConfig(),
		Server:    *DefaultServerConfig(),
		Metrics:   *DefaultMetricsConfig(),
		Signer:    *DefaultSignerConfig(),
	}
}

// New loads the config file at cfgFile on top of the defaults. Any key can be
// overridden by an ONEDREAM_ prefixed env variable, e.g. ONEDREAM_RPC__MAX_RETRY_TIMES.
func New(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(cfgFile)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__", "-", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("signer.private-key", envPrefix+"_SIGNER_PRIVATE_KEY"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("market.bscscan-api-key", envPrefix+"_BSCSCAN_API_KEY"); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) Validate() error {
	if err := cfg.RPC.Validate(); err != nil {
		return fmt.Errorf("invalid rpc config: %w", err)
	}
	if err := cfg.Contracts.Validate(); err != nil {
		return fmt.Errorf("invalid contracts config: %w", err)
	}
	if err := cfg.Scanner.Validate(); err != nil {
		return fmt.Errorf("invalid scanner config: %w", err)
	}
	if err := cfg.Multicall.Validate(); err != nil {
		return fmt.Errorf("invalid multicall config: %w", err)
	}
	if err := cfg.Cache.Validate(); err != nil {
		return fmt.Errorf("invalid cache config: %w", err)
	}
	// mongo is only needed as a cache backend
	if cfg.Cache.Backend == CacheBackendMongo {
		if err := cfg.Db.Validate(); err != nil {
			return fmt.Errorf("invalid db config: %w", err)
		}
	}
	if err := cfg.Market.Validate(); err != nil {
		return fmt.Errorf("invalid market config: %w", err)
	}
	if err := cfg.Poller.Validate(); err != nil {
		return fmt.Errorf("invalid poller config: %w", err)
	}
	if err := cfg.Server.Validate(); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}
	if err := cfg.Metrics.Validate(); err != nil {
		return fmt.Errorf("invalid metrics config: %w", err)
	}
	if err := cfg.Signer.Validate(); err != nil {
		return fmt.Errorf("invalid signer config: %w", err)
	}

	return nil
}
