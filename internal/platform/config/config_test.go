package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ABSENCE_POLICY", "")
	cfg := Load()
	if cfg.Addr != ":8080" || cfg.AbsencePolicy != "per_day" || cfg.OrphanRecordPolicy != "tolerate" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.RemotePingTimeout != 5*time.Second || !cfg.RunMigrations || cfg.SyncInterval != 0 {
		t.Fatalf("unexpected remote defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Fatal("expected demo mode without an operator")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("REMOTE_PING_TIMEOUT", "250ms")
	t.Setenv("RUN_MIGRATIONS", "false")
	t.Setenv("SYNC_INTERVAL", "30s")
	t.Setenv("MAX_BODY_BYTES", "not-a-number")
	cfg := Load()
	if cfg.RemotePingTimeout != 250*time.Millisecond || cfg.RunMigrations || cfg.SyncInterval != 30*time.Second {
		t.Fatalf("overrides not applied %+v", cfg)
	}
	if cfg.MaxBodyBytes != 1048576 {
		t.Fatalf("expected fallback for bad int, got %d", cfg.MaxBodyBytes)
	}
}

func TestValidate(t *testing.T) {
	base := Load()

	bad := base
	bad.AbsencePolicy = "hourly"
	if err := bad.Validate(); err == nil {
		t.Fatal("expected unknown absence policy to fail")
	}

	bad = base
	bad.OrphanRecordPolicy = "drop"
	if err := bad.Validate(); err == nil {
		t.Fatal("expected unknown orphan policy to fail")
	}

	bad = base
	bad.OperatorEmail = "rh@example.com"
	bad.OperatorPasswordHash = "$2a$10$hash"
	bad.JWTSecret = ""
	if err := bad.Validate(); err == nil {
		t.Fatal("expected missing JWT secret to fail")
	}

	bad = base
	bad.SyncInterval = -time.Second
	if err := bad.Validate(); err == nil {
		t.Fatal("expected negative sync interval to fail")
	}

	bad = base
	bad.Environment = "production"
	bad.OperatorEmail = ""
	if err := bad.Validate(); err == nil {
		t.Fatal("expected production without operator to fail")
	}
}
