package config

import (
	"errors"
	"net/url"
)

type DbConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DbName   string `mapstructure:"db-name"`
	Address  string `mapstructure:"address"`
}

func DefaultDbConfig() *DbConfig {
	return &DbConfig{
		DbName:  "onedream-staking-indexer",
		Address: "mongodb://localhost:27017",
	}
}

func (cfg *DbConfig) Validate() error {
	if cfg.DbName == "" {
		return errors.New("db-name is required")
	}

	if cfg.Address == "" {
		return errors.New("address is required")
	}

	u, err := url.Parse(cfg.Address)
	if err != nil {
		return errors.New("address is not a valid url")
	}
	if u.Scheme != "mongodb" && u.Scheme != "mongodb+srv" {
		return errors.New("address must start with mongodb:// or mongodb+srv://")
	}

	return nil
}
