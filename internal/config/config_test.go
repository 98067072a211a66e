package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 0},
		Database: DatabaseConfig{Driver: DriverMemory},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_RedisRequiresAddrs(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Driver: DriverRedis},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing redis addrs")
	}
}

func TestValidate_MemoryWithoutAddrs(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Driver: DriverMemory},
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Driver: "valkey", Addrs: []string{"localhost:6379"}},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
	expected := `database.driver must be "redis" or "memory", got "valkey"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_ProviderWithoutModel(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{Port: 8080},
		Database:  DatabaseConfig{Driver: DriverMemory},
		Embedding: EmbeddingConfig{Provider: "nebius"},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for provider without model")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.Driver != DriverRedis {
		t.Errorf("expected driver redis, got %q", cfg.Database.Driver)
	}
	if cfg.Index.HNSWM != 16 || cfg.Index.HNSWEFConstruct != 200 {
		t.Errorf("expected HNSW 16/200, got %d/%d", cfg.Index.HNSWM, cfg.Index.HNSWEFConstruct)
	}
	if cfg.Index.VectorDimensions != 1024 {
		t.Errorf("expected VectorDimensions=1024, got %d", cfg.Index.VectorDimensions)
	}
	if cfg.Search.ExecTimeout() != 5*time.Second {
		t.Errorf("expected exec timeout 5s, got %s", cfg.Search.ExecTimeout())
	}
	if cfg.Ingest.Workers != 4 {
		t.Errorf("expected Workers=4, got %d", cfg.Ingest.Workers)
	}
	if cfg.Embedding.CacheSize != 1024 {
		t.Errorf("expected CacheSize=1024, got %d", cfg.Embedding.CacheSize)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database: DatabaseConfig{Driver: DriverMemory, ReadinessTimeout: 15},
		Index:    IndexConfig{VectorDimensions: 384, HNSWM: 32, HNSWEFConstruct: 400},
		Search:   SearchConfig{ExecTimeoutMs: 1500},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Database.Driver != DriverMemory {
		t.Errorf("expected driver memory, got %q", cfg.Database.Driver)
	}
	if cfg.Index.VectorDimensions != 384 || cfg.Index.HNSWM != 32 {
		t.Errorf("index overridden: %+v", cfg.Index)
	}
	if cfg.Search.ExecTimeout() != 1500*time.Millisecond {
		t.Errorf("expected exec timeout 1.5s, got %s", cfg.Search.ExecTimeout())
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("REPORTDEX_TEST_KEY", "secret")

	cfg, err := Parse([]byte(strings.Join([]string{
		"http:",
		"  port: 8080",
		"database:",
		"  driver: memory",
		"embedding:",
		"  provider: nebius",
		"  model: Qwen/Qwen3-Embedding-8B",
		"  api_key: ${REPORTDEX_TEST_KEY}",
		"  base_url: ${REPORTDEX_TEST_UNSET:-https://api.example.com/v1/}",
	}, "\n")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Embedding.APIKey != "secret" {
		t.Errorf("api_key = %q", cfg.Embedding.APIKey)
	}
	if cfg.Embedding.BaseURL != "https://api.example.com/v1/" {
		t.Errorf("base_url = %q", cfg.Embedding.BaseURL)
	}
	if !cfg.Embedding.Enabled() {
		t.Error("embedding must be enabled")
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := Parse([]byte("http:\n  port: 8080\n")); err == nil {
		t.Fatal("expected validation error for redis without addrs")
	}
}
