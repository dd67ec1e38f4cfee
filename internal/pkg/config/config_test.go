package config

import (
	"context"
	"testing"

	"github.com/sethvargo/go-envconfig"
)

func load(t *testing.T, env map[string]string) *Config {
	t.Helper()
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(env))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return cfg
}

func TestLoad_Defaults(t *testing.T) {
	cfg := load(t, map[string]string{})

	if cfg.Port != "8080" || cfg.StoreDriver != StoreMemory || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Mongo.Database != "jwt_auth" || cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected backend defaults: %+v %+v", cfg.Mongo, cfg.Redis)
	}
}

func TestSigningSecret_InsecureDefaultIsFlagged(t *testing.T) {
	cfg := load(t, map[string]string{})

	if string(cfg.SigningSecret()) != InsecureDefaultSecret {
		t.Fatalf("expected insecure default secret")
	}
	if !cfg.UsingInsecureSecret() {
		t.Fatalf("expected insecure secret to be reported")
	}
	warnings := cfg.Warnings()
	if len(warnings) != 1 || warnings[0].Setting != "JWT_SECRET" {
		t.Fatalf("expected JWT_SECRET warning, got %+v", warnings)
	}
}

func TestSigningSecret_Precedence(t *testing.T) {
	cfg := load(t, map[string]string{
		"JWT_SECRET":                "from-env",
		"SECRET_MANAGER_JWT_SECRET": "from-manager",
	})
	if string(cfg.SigningSecret()) != "from-env" {
		t.Fatalf("JWT_SECRET must win, got %s", cfg.SigningSecret())
	}
	if len(cfg.Warnings()) != 0 {
		t.Fatalf("expected no warnings, got %+v", cfg.Warnings())
	}

	cfg = load(t, map[string]string{"SECRET_MANAGER_JWT_SECRET": "from-manager"})
	if string(cfg.SigningSecret()) != "from-manager" {
		t.Fatalf("expected secret manager value, got %s", cfg.SigningSecret())
	}
	if cfg.UsingInsecureSecret() {
		t.Fatalf("secret manager value is not insecure")
	}
}

func TestWarnings_MemoryStoreInProduction(t *testing.T) {
	cfg := load(t, map[string]string{"JWT_SECRET": "s", "ENV": "production"})
	warnings := cfg.Warnings()
	if len(warnings) != 1 || warnings[0].Setting != "STORE_DRIVER" {
		t.Fatalf("expected STORE_DRIVER warning, got %+v", warnings)
	}
}

func TestLoad_UnknownStoreDriver(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{"STORE_DRIVER": "postgres"}))
	if err == nil {
		t.Fatalf("expected error for unknown store driver")
	}
}
