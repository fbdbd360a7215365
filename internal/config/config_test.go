package config

import (
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP:  HTTPConfig{Port: 8080},
		Cache: CacheConfig{Addrs: []string{"localhost:6379"}},
		LLM: LLMConfig{
			DefaultProvider: "groq",
			Providers: map[string]ProviderConfig{
				"groq": {BaseURL: "https://api.groq.com/openai/v1", Model: "llama-3.3-70b-versatile"},
			},
		},
		Pipeline: PipelineConfig{SampleSize: 50},
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingCacheAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing cache addrs")
	}
}

func TestValidate_UnknownDefaultProvider(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.DefaultProvider = "missing"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown default provider")
	}
}

func TestValidate_ProviderMissingBaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Providers["groq"] = ProviderConfig{Model: "llama-3.3-70b-versatile"}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for provider without base_url")
	}
}

func TestValidate_SampleSizeBounds(t *testing.T) {
	for _, size := range []int{2, 51} {
		cfg := validConfig()
		cfg.Pipeline.SampleSize = size

		if err := cfg.Validate(); err == nil {
			t.Errorf("sample_size %d: expected error", size)
		}
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
	if cfg.Cache.KeyPrefix != "mongoman:" {
		t.Errorf("expected KeyPrefix='mongoman:', got %q", cfg.Cache.KeyPrefix)
	}
	if cfg.Cache.SchemaTTLMin != 30 {
		t.Errorf("expected SchemaTTLMin=30, got %d", cfg.Cache.SchemaTTLMin)
	}
	if cfg.Pipeline.SampleSize != 50 {
		t.Errorf("expected SampleSize=50, got %d", cfg.Pipeline.SampleSize)
	}
	if cfg.Pipeline.TimeoutSec != 60 {
		t.Errorf("expected TimeoutSec=60, got %d", cfg.Pipeline.TimeoutSec)
	}
	if cfg.Pipeline.MaxSuggestions != 6 {
		t.Errorf("expected MaxSuggestions=6, got %d", cfg.Pipeline.MaxSuggestions)
	}
	if cfg.Pipeline.ScanWorkers != 4 {
		t.Errorf("expected ScanWorkers=4, got %d", cfg.Pipeline.ScanWorkers)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 120, ShutdownSec: 5},
		Cache:    CacheConfig{KeyPrefix: "custom:", SchemaTTLMin: 5},
		Pipeline: PipelineConfig{SampleSize: 10, TimeoutSec: 30, MaxSuggestions: 4, ScanWorkers: 2},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.WriteTimeoutSec != 120 {
		t.Errorf("expected WriteTimeoutSec=120, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Cache.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Cache.KeyPrefix)
	}
	if cfg.Pipeline.SampleSize != 10 {
		t.Errorf("expected SampleSize=10, got %d", cfg.Pipeline.SampleSize)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("MONGOMAN_TEST_VAR", "from-env")

	got := string(expandEnvVars([]byte("a: ${MONGOMAN_TEST_VAR}\nb: ${MONGOMAN_TEST_UNSET:-fallback}\nc: ${MONGOMAN_TEST_UNSET}")))

	want := "a: from-env\nb: fallback\nc: "
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
