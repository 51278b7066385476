package config

import (
	"errors"
	"time"
)

const (
	defaultChunkSize          = 10000
	defaultChunkDelay         = time.Second
	defaultChunkMaxRetryTimes = 7
	defaultChunkRetryInterval = 5 * time.Second
	defaultClaimCheckWorkers  = 8
	defaultHistoryTimeout     = 30 * time.Minute
)

type ScannerConfig struct {
	ChunkSize          uint64        `mapstructure:"chunk-size"`
	ChunkDelay         time.Duration `mapstructure:"chunk-delay"`
	ChunkMaxRetryTimes uint          `mapstructure:"chunk-max-retry-times"`
	ChunkRetryInterval time.Duration `mapstructure:"chunk-retry-interval"`
	// ClaimCheckWorkers bounds the parallel claim status reads of referred stakes.
	ClaimCheckWorkers int `mapstructure:"claim-check-workers"`
	// HistoryTimeout bounds one background referral history scan. Zero means
	// no limit.
	HistoryTimeout time.Duration `mapstructure:"history-timeout"`
}

func DefaultScannerConfig() *ScannerConfig {
	return &ScannerConfig{
		ChunkSize:          defaultChunkSize,
		ChunkDelay:         defaultChunkDelay,
		ChunkMaxRetryTimes: defaultChunkMaxRetryTimes,
		ChunkRetryInterval: defaultChunkRetryInterval,
		ClaimCheckWorkers:  defaultClaimCheckWorkers,
		HistoryTimeout:     defaultHistoryTimeout,
	}
}

func (cfg *ScannerConfig) Validate() error {
	if cfg.ChunkSize == 0 {
		return errors.New("chunk-size must be positive")
	}

	if cfg.ChunkDelay < 0 {
		return errors.New("chunk-delay must not be negative")
	}

	if cfg.ChunkRetryInterval <= 0 {
		return errors.New("chunk-retry-interval must be positive")
	}

	if cfg.ClaimCheckWorkers <= 0 {
		cfg.ClaimCheckWorkers = defaultClaimCheckWorkers
	}

	if cfg.HistoryTimeout < 0 {
		return errors.New("history-timeout must not be negative")
	}

	return nil
}

type MulticallConfig struct {
	SubBatchSize int `mapstructure:"sub-batch-size"`
}

func DefaultMulticallConfig() *MulticallConfig {
	return &MulticallConfig{
		SubBatchSize: 10,
	}
}

func (cfg *MulticallConfig) Validate() error {
	if cfg.SubBatchSize <= 0 {
		return errors.New("sub-batch-size must be positive")
	}

	return nil
}
