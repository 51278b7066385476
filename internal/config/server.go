package config

import (
	"errors"
	"fmt"
	"time"
)

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read-timeout"`
	WriteTimeout time.Duration `mapstructure:"write-timeout"`
}

func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}
}

func (cfg *ServerConfig) Validate() error {
	if cfg.Host == "" {
		return errors.New("host is required")
	}

	if cfg.Port < 1024 || cfg.Port > 65535 {
		return fmt.Errorf("port number must be between 1024 and 65535 (inclusive), got %d", cfg.Port)
	}

	if cfg.ReadTimeout <= 0 || cfg.WriteTimeout <= 0 {
		return errors.New("read-timeout and write-timeout must be positive")
	}

	return nil
}

func (cfg *ServerConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}
