package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != 8082 {
		t.Errorf("Server.Port = %d, want 8082", cfg.Server.Port)
	}
	if cfg.Database.ConnectionString() == "" {
		t.Error("expected non-empty connection string")
	}
	if cfg.Currency != "usd" {
		t.Errorf("Currency = %q, want usd", cfg.Currency)
	}
	if len(cfg.Kafka.Brokers) != 1 || cfg.Kafka.Brokers[0] != "localhost:9092" {
		t.Errorf("Kafka.Brokers = %v, want [localhost:9092]", cfg.Kafka.Brokers)
	}
	if !cfg.Features.EnableOrderCaching || !cfg.Features.EnableOrderEvents {
		t.Error("feature flags should default to enabled")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("ENABLE_ORDER_CACHING", "false")
	t.Setenv("CATALOG_SERVICE_TIMEOUT", "5")
	t.Setenv("ORDER_CURRENCY", "eur")

	cfg := Load()

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "kafka-2:9092" {
		t.Errorf("Kafka.Brokers = %v, want two trimmed brokers", cfg.Kafka.Brokers)
	}
	if cfg.Features.EnableOrderCaching {
		t.Error("EnableOrderCaching should be overridden to false")
	}
	if cfg.CatalogService.Timeout != 5*time.Second {
		t.Errorf("CatalogService.Timeout = %v, want 5s", cfg.CatalogService.Timeout)
	}
	if cfg.Currency != "eur" {
		t.Errorf("Currency = %q, want eur", cfg.Currency)
	}
}

func TestConnectionString(t *testing.T) {
	d := DatabaseConfig{
		Host: "db", Port: 5433, User: "u", Password: "p", Name: "orders", SSLMode: "require",
	}

	want := "host=db port=5433 user=u password=p dbname=orders sslmode=require"
	if got := d.ConnectionString(); got != want {
		t.Errorf("ConnectionString() = %q, want %q", got, want)
	}
}
