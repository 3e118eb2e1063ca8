package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("SHOPIFY_SHOP", "")

	cfg := Load()

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("db host = %s", cfg.Database.Host)
	}
	if cfg.Membership.GraceDays != 30 || cfg.Membership.LapsedAfterDays != 365 {
		t.Errorf("membership = %+v", cfg.Membership)
	}
	if cfg.Sync.Timeout != 5*time.Minute {
		t.Errorf("sync timeout = %v", cfg.Sync.Timeout)
	}
	if cfg.Membership.MemberTag != "Quack" {
		t.Errorf("member tag = %q", cfg.Membership.MemberTag)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "membership:\n  grace_days: 14\n  skus: [A-1, B-2]\nsync:\n  timeout: 90s\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg := Load()

	if cfg.Membership.GraceDays != 14 {
		t.Errorf("grace = %d, want 14", cfg.Membership.GraceDays)
	}
	if len(cfg.Membership.SKUs) != 2 || cfg.Membership.SKUs[1] != "B-2" {
		t.Errorf("skus = %v", cfg.Membership.SKUs)
	}
	if cfg.Sync.Timeout != 90*time.Second {
		t.Errorf("timeout = %v", cfg.Sync.Timeout)
	}
}
