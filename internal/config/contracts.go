package config

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

const defaultStakingDeploymentBlock = 43436500

type ContractsConfig struct {
	Staking   string `mapstructure:"staking"`
	Token     string `mapstructure:"token"`
	Multicall string `mapstructure:"multicall"`
	// Vault is optional, the vault endpoints report the contract as not deployed while it is empty.
	Vault  string `mapstructure:"vault"`
	Pair   string `mapstructure:"pair"`
	Router string `mapstructure:"router"`
	WBNB   string `mapstructure:"wbnb"`
	USDT   string `mapstructure:"usdt"`

	StakingDeploymentBlock uint64 `mapstructure:"staking-deployment-block"`
}

func DefaultContractsConfig() *ContractsConfig {
	return &ContractsConfig{
		Staking:                "0xded53d0b2dd7be3c30243e97b65b8a6647c61108",
		Token:                  "0x0C98F3e79061E0dB9569cd2574d8aac0d5023965",
		Multicall:              "0xca11bde05977b363a0dcdcdcc1ce80336d51aaae",
		Pair:                   "0xc80942ecb8004784551ea5c460134463ac2962b5",
		Router:                 "0x10ED43C718714eb63d5aA57B78B54704E256024E",
		WBNB:                   "0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c",
		USDT:                   "0x55d398326f99059fF775485246999027B3197955",
		StakingDeploymentBlock: defaultStakingDeploymentBlock,
	}
}

func (cfg *ContractsConfig) Validate() error {
	required := map[string]string{
		"staking":   cfg.Staking,
		"token":     cfg.Token,
		"multicall": cfg.Multicall,
		"pair":      cfg.Pair,
		"router":    cfg.Router,
		"wbnb":      cfg.WBNB,
		"usdt":      cfg.USDT,
	}
	for name, addr := range required {
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("%s contract address %q is invalid", name, addr)
		}
	}

	if cfg.Vault != "" && !common.IsHexAddress(cfg.Vault) {
		return fmt.Errorf("vault contract address %q is invalid", cfg.Vault)
	}

	return nil
}

func (cfg *ContractsConfig) StakingAddress() common.Address {
	return common.HexToAddress(cfg.Staking)
}

func (cfg *ContractsConfig) TokenAddress() common.Address {
	return common.HexToAddress(cfg.Token)
}

func (cfg *ContractsConfig) MulticallAddress() common.Address {
	return common.HexToAddress(cfg.Multicall)
}

// VaultAddress returns false when no vault contract is configured.
func (cfg *ContractsConfig) VaultAddress() (common.Address, bool) {
	if cfg.Vault == "" {
		return common.Address{}, false
	}
	return common.HexToAddress(cfg.Vault), true
}

func (cfg *ContractsConfig) PairAddress() common.Address {
	return common.HexToAddress(cfg.Pair)
}

func (cfg *ContractsConfig) RouterAddress() common.Address {
	return common.HexToAddress(cfg.Router)
}

func (cfg *ContractsConfig) WBNBAddress() common.Address {
	return common.HexToAddress(cfg.WBNB)
}

func (cfg *ContractsConfig) USDTAddress() common.Address {
	return common.HexToAddress(cfg.USDT)
}
