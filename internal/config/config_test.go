package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(configDirEnvKey, dir)
	t.Setenv(dbPathEnvKey, "")
	t.Setenv(backupDirEnvKey, "")
	t.Setenv(externalMountEnvKey, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backup.RetentionDays != DefaultRetentionDays {
		t.Fatalf("expected retention %d, got %d", DefaultRetentionDays, cfg.Backup.RetentionDays)
	}
	if cfg.DefaultReturnDays != DefaultReturnDays {
		t.Fatalf("expected return days %d, got %d", DefaultReturnDays, cfg.DefaultReturnDays)
	}
	if cfg.StrictStageOrder {
		t.Fatal("strict stage order should default to false")
	}
	if cfg.Backup.Dir == "" {
		t.Fatal("backup dir should default next to the db")
	}
	if cfg.Backup.ExternalSubdir != DefaultExternalSubdir {
		t.Fatalf("unexpected external subdir %q", cfg.Backup.ExternalSubdir)
	}
}

func TestLoadFromFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(configDirEnvKey, dir)
	t.Setenv(backupDirEnvKey, "")
	t.Setenv(externalMountEnvKey, "")

	content := `db_path = "/var/lib/labtrack/app.db"
strict_stage_order = true

[backup]
retention_days = 30
external_mount = "/media/usb_backup"
`
	if err := os.WriteFile(filepath.Join(dir, configFileName), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(dbPathEnvKey, "/tmp/override.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "/tmp/override.db" {
		t.Fatalf("env override not applied, got %q", cfg.DBPath)
	}
	if !cfg.StrictStageOrder {
		t.Fatal("strict_stage_order not loaded")
	}
	if cfg.Backup.RetentionDays != 30 {
		t.Fatalf("expected retention 30, got %d", cfg.Backup.RetentionDays)
	}
	if cfg.Backup.ExternalMount != "/media/usb_backup" {
		t.Fatalf("unexpected external mount %q", cfg.Backup.ExternalMount)
	}
}

func TestSetKeyRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, configFileName)

	if err := SetKey(path, "backup.retention_days", "90"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := SetKey(path, "db_path", "/data/app.db"); err != nil {
		t.Fatalf("set: %v", err)
	}

	var cfg Config
	if err := loadFileIfExists(path, &cfg); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if cfg.Backup.RetentionDays != 90 {
		t.Fatalf("expected retention 90, got %d", cfg.Backup.RetentionDays)
	}
	if cfg.DBPath != "/data/app.db" {
		t.Fatalf("unexpected db path %q", cfg.DBPath)
	}
}

func TestSetKeyRejectsUnknownAndInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), configFileName)

	if err := SetKey(path, "nope", "1"); err == nil {
		t.Fatal("expected unknown key error")
	}
	if err := SetKey(path, "backup.retention_days", "-3"); err == nil {
		t.Fatal("expected positive integer error")
	}
	if err := SetKey(path, "strict_stage_order", "maybe"); err == nil {
		t.Fatal("expected boolean parse error")
	}
}
