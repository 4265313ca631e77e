package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.ServerPort == "" {
		t.Fatalf("expected default server port")
	}
	if cfg.APIBaseURL == "" {
		t.Fatalf("expected default api base url")
	}
	if cfg.ChainID == 0 {
		t.Fatalf("expected default chain id")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", ":9000")
	t.Setenv("API_BASE_URL", "https://api.example.com")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("CHAIN_ID", "1135")
	t.Setenv("PROFILE_CONTRACT", "0x00000000000000000000000000000000000000aa")

	cfg := Load()
	if cfg.ServerPort != ":9000" {
		t.Fatalf("expected override port")
	}
	if cfg.APIBaseURL != "https://api.example.com" {
		t.Fatalf("expected override api base url")
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Fatalf("expected override redis")
	}
	if cfg.ChainID != 1135 {
		t.Fatalf("expected override chain id, got %d", cfg.ChainID)
	}
	if cfg.ProfileContract == "" {
		t.Fatalf("expected override contract address")
	}
}
