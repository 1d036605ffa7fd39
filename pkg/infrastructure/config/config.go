package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	ServiceName    = "printforge-erp"
	ServiceVersion = "0.1.0"
)

// Config holds runtime configuration loaded from YAML with environment
// overrides
type Config struct {
	Kafka struct {
		Broker string `yaml:"broker"`
		Topic  string `yaml:"topic"`
	} `yaml:"kafka"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
	Costing struct {
		Enabled              bool   `yaml:"enabled"`
		WIPAccount           string `yaml:"wip_account"`
		FinishedGoodsAccount string `yaml:"finished_goods_account"`
	} `yaml:"costing"`
	Scenario struct {
		Dir string `yaml:"dir"`
	} `yaml:"scenario"`
}

// Default returns the configuration used when no file is provided
func Default() *Config {
	cfg := &Config{}
	cfg.Kafka.Topic = "orders"
	cfg.Logging.Level = "info"
	cfg.Costing.WIPAccount = "1300-WIP"
	cfg.Costing.FinishedGoodsAccount = "1400-FG"
	return cfg
}

// Load reads a YAML config file, falling back to defaults for unset fields,
// then applies environment overrides. An empty path loads defaults and
// environment only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if cfg.Kafka.Broker != "" && cfg.Kafka.Topic == "" {
		return nil, fmt.Errorf("kafka.topic is required when kafka.broker is set")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ERP_KAFKA_BROKER"); v != "" {
		cfg.Kafka.Broker = v
	}
	if v := os.Getenv("ERP_KAFKA_TOPIC"); v != "" {
		cfg.Kafka.Topic = v
	}
	if v := os.Getenv("ERP_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
