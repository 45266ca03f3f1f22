package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAPIConfigDefaults(t *testing.T) {
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("BACKEND_CORS_ORIGINS", "http://localhost:3000, https://app.example.com")

	src, err := NewSource("")
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	cfg, err := loadAPIConfig(src)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.APIPrefix != "/api/v1" {
		t.Fatalf("unexpected prefix %q", cfg.APIPrefix)
	}
	if cfg.AccessTokenTTL != 30*time.Minute {
		t.Fatalf("unexpected access ttl %s", cfg.AccessTokenTTL)
	}
	if cfg.APIKeyTTL != 365*24*time.Hour {
		t.Fatalf("unexpected api key ttl %s", cfg.APIKeyTTL)
	}
	if cfg.APIKeyEncryptionKey != "s3cret" {
		t.Fatalf("expected encryption key to fall back to secret")
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://app.example.com" {
		t.Fatalf("unexpected cors origins %v", cfg.CORSOrigins)
	}
}

func TestLoadAPIConfigRequiresSecret(t *testing.T) {
	t.Setenv("SECRET_KEY", "")
	src, err := NewSource("")
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	if _, err := loadAPIConfig(src); err == nil {
		t.Fatalf("expected missing secret to fail")
	}
}

func TestLoadAPIConfigRejectsUnknownAlgorithm(t *testing.T) {
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("ALGORITHM", "RS256")
	src, err := NewSource("")
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	if _, err := loadAPIConfig(src); err == nil {
		t.Fatalf("expected RS256 to be rejected")
	}
}

func TestSourceReadsConfigFile(t *testing.T) {
	t.Setenv("SECRET_KEY", "")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "shiftwatch.yaml")
	body := "SECRET_KEY: from-file\nACCESS_TOKEN_EXPIRE_MINUTES: 5\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	src, err := NewSource(path)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	cfg, err := loadAPIConfig(src)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.SecretKey != "from-file" || cfg.AccessTokenTTL != 5*time.Minute {
		t.Fatalf("unexpected config from file: %+v", cfg)
	}
}
