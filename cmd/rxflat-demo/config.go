package main

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config 演示程序配置，全部来自环境变量（可选 .env 文件）
type Config struct {
	LogLevel  string `env:"RXFLAT_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"RXFLAT_LOG_FORMAT" envDefault:"text"`

	Pages       int           `env:"RXFLAT_PAGES" envDefault:"200"`
	Concurrency int           `env:"RXFLAT_CONCURRENCY" envDefault:"8"`
	FailureRate float64       `env:"RXFLAT_FAILURE_RATE" envDefault:"0.05"`
	MaxLatency  time.Duration `env:"RXFLAT_MAX_LATENCY" envDefault:"20ms"`

	Items     int `env:"RXFLAT_BATCH_ITEMS" envDefault:"1000"`
	BatchSize int `env:"RXFLAT_BATCH_SIZE" envDefault:"100"`

	Timeout time.Duration `env:"RXFLAT_TIMEOUT" envDefault:"30s"`
}

var errInvalidConfig = errors.New("invalid config")

// loadConfig 加载 .env（文件不存在时忽略）并解析环境变量
func loadConfig(envFiles ...string) (Config, error) {
	var cfg Config

	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load env file: %w", err)
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch {
	case c.Concurrency < 1:
		return fmt.Errorf("%w: RXFLAT_CONCURRENCY must be >= 1, got %d", errInvalidConfig, c.Concurrency)
	case c.BatchSize < 1:
		return fmt.Errorf("%w: RXFLAT_BATCH_SIZE must be >= 1, got %d", errInvalidConfig, c.BatchSize)
	case c.FailureRate < 0 || c.FailureRate > 1:
		return fmt.Errorf("%w: RXFLAT_FAILURE_RATE must be within [0, 1], got %v", errInvalidConfig, c.FailureRate)
	case c.Pages < 0 || c.Items < 0:
		return fmt.Errorf("%w: RXFLAT_PAGES and RXFLAT_BATCH_ITEMS must not be negative", errInvalidConfig)
	}
	return nil
}
