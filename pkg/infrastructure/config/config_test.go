package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Kafka.Topic != "orders" {
		t.Errorf("expected default topic orders, got %q", cfg.Kafka.Topic)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default level info, got %q", cfg.Logging.Level)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "erp.yaml")
	content := `kafka:
  broker: localhost:9092
  topic: order-events
logging:
  level: debug
costing:
  enabled: true
  wip_account: "1310"
  finished_goods_account: "1410"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Kafka.Broker != "localhost:9092" {
		t.Errorf("unexpected broker %q", cfg.Kafka.Broker)
	}
	if cfg.Kafka.Topic != "order-events" {
		t.Errorf("unexpected topic %q", cfg.Kafka.Topic)
	}
	if !cfg.Costing.Enabled || cfg.Costing.WIPAccount != "1310" {
		t.Errorf("unexpected costing config %+v", cfg.Costing)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "erp.yaml")
	if err := os.WriteFile(path, []byte("kafka:\n  broker: from-file:9092\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("ERP_KAFKA_BROKER", "from-env:9092")
	t.Setenv("ERP_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Kafka.Broker != "from-env:9092" {
		t.Errorf("env override ignored, got %q", cfg.Kafka.Broker)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("env level override ignored, got %q", cfg.Logging.Level)
	}
}

func TestLoad_MissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
