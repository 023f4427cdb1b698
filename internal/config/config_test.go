package config

import "testing"

func validConfig() Config {
	return Config{
		HTTP:    HTTPConfig{Port: 8080},
		Content: ContentConfig{DSN: "catalog.db"},
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_InvalidProtocol(t *testing.T) {
	cfg := validConfig()
	cfg.Typesense.Protocol = "ftp"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid protocol")
	}
}

func TestValidate_MissingContentDSN(t *testing.T) {
	cfg := validConfig()
	cfg.Content.DSN = ""
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing content dsn")
	}
}

func TestValidate_TypesensePortRequiredWithHost(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()
	cfg.Typesense.Host = "ts.example"
	cfg.Typesense.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing typesense port")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 90 {
		t.Errorf("expected WriteTimeoutSec=90, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Typesense.Protocol != "https" {
		t.Errorf("expected Protocol=https, got %q", cfg.Typesense.Protocol)
	}
	if cfg.Typesense.Collection != "site_content" {
		t.Errorf("expected Collection=site_content, got %q", cfg.Typesense.Collection)
	}
	if cfg.OpenAI.Model != "gpt-4o-mini" {
		t.Errorf("expected Model=gpt-4o-mini, got %q", cfg.OpenAI.Model)
	}
	if cfg.Index.PageSize != 100 {
		t.Errorf("expected PageSize=100, got %d", cfg.Index.PageSize)
	}
	if cfg.Index.BatchSize != 40 {
		t.Errorf("expected BatchSize=40, got %d", cfg.Index.BatchSize)
	}
	if cfg.Index.ResyncDelaySec != 5 {
		t.Errorf("expected ResyncDelaySec=5, got %d", cfg.Index.ResyncDelaySec)
	}
	if cfg.Cache.KeyPrefix != "unisearch:" {
		t.Errorf("expected KeyPrefix='unisearch:', got %q", cfg.Cache.KeyPrefix)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Typesense: TypesenseConfig{Protocol: "http", Collection: "shop", TimeoutSec: 3},
		Index:     IndexConfig{Types: []string{"product"}, PageSize: 50, BatchSize: 10, ResyncDelaySec: 30},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Typesense.Protocol != "http" {
		t.Errorf("expected Protocol=http, got %q", cfg.Typesense.Protocol)
	}
	if len(cfg.Index.Types) != 1 || cfg.Index.Types[0] != "product" {
		t.Errorf("expected Types=[product], got %v", cfg.Index.Types)
	}
	if cfg.Index.BatchSize != 10 {
		t.Errorf("expected BatchSize=10, got %d", cfg.Index.BatchSize)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("US_TEST_KEY", "secret")

	got := string(expandEnvVars([]byte("api_key: ${US_TEST_KEY}\nhost: ${US_TEST_HOST:-localhost}")))
	want := "api_key: secret\nhost: localhost"
	if got != want {
		t.Errorf("expanded = %q, want %q", got, want)
	}
}
