package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DefaultDBFileName     = "labtrack.db"
	DefaultBackupDirName  = "backups"
	DefaultRetentionDays  = 365
	DefaultReturnDays     = 14
	DefaultExternalSubdir = "labtrack_backups"
	DefaultLogLevel       = "info"

	configFileName  = ".labtrack.toml"
	configDirEnvKey = "LABTRACK_CONFIG_DIR"

	dbPathEnvKey        = "LABTRACK_DB"
	backupDirEnvKey     = "LABTRACK_BACKUP_DIR"
	externalMountEnvKey = "LABTRACK_EXTERNAL_MOUNT"
)

// BackupConfig defines backup destinations and retention.
type BackupConfig struct {
	Dir            string `toml:"dir"`
	RetentionDays  int    `toml:"retention_days"`
	ExternalMount  string `toml:"external_mount"`
	ExternalSubdir string `toml:"external_subdir"`
}

// Config defines runtime configuration for labtrack.
type Config struct {
	DBPath            string       `toml:"db_path"`
	DefaultReturnDays int          `toml:"default_return_days"`
	StrictStageOrder  bool         `toml:"strict_stage_order"`
	LogLevel          string       `toml:"log_level"`
	Backup            BackupConfig `toml:"backup"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		DBPath:            "",
		DefaultReturnDays: DefaultReturnDays,
		StrictStageOrder:  false,
		LogLevel:          "",
		Backup: BackupConfig{
			Dir:            "",
			RetentionDays:  DefaultRetentionDays,
			ExternalMount:  "",
			ExternalSubdir: DefaultExternalSubdir,
		},
	}
}

// Load reads .env, the config file, and env overrides, in that order.
func Load() (*Config, error) {
	// Optional .env next to the working directory, matching how the
	// deployment scripts provision machines.
	_ = godotenv.Load()

	cfg := Default()

	path, err := Path()
	if err != nil {
		return nil, err
	}
	if err := loadFileIfExists(path, &cfg); err != nil {
		return nil, err
	}

	if dbPath := strings.TrimSpace(os.Getenv(dbPathEnvKey)); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if dir := strings.TrimSpace(os.Getenv(backupDirEnvKey)); dir != "" {
		cfg.Backup.Dir = dir
	}
	if mount := strings.TrimSpace(os.Getenv(externalMountEnvKey)); mount != "" {
		cfg.Backup.ExternalMount = mount
	}

	cfg.normalizeDefaults()

	return &cfg, nil
}

// Path returns the location of the config file.
func Path() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(configDirEnvKey)); dir != "" {
		return filepath.Join(dir, configFileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configFileName), nil
}

func loadFileIfExists(path string, cfg *Config) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) normalizeDefaults() {
	if c.DBPath == "" {
		if cwd, err := os.Getwd(); err == nil {
			c.DBPath = filepath.Join(cwd, DefaultDBFileName)
		}
	}
	if c.Backup.Dir == "" && c.DBPath != "" {
		c.Backup.Dir = filepath.Join(filepath.Dir(c.DBPath), DefaultBackupDirName)
	}
	if c.Backup.RetentionDays <= 0 {
		c.Backup.RetentionDays = DefaultRetentionDays
	}
	if c.Backup.ExternalSubdir == "" {
		c.Backup.ExternalSubdir = DefaultExternalSubdir
	}
	if c.DefaultReturnDays <= 0 {
		c.DefaultReturnDays = DefaultReturnDays
	}
}

var allowedKeys = []string{
	"db_path",
	"default_return_days",
	"strict_stage_order",
	"log_level",
	"backup.dir",
	"backup.retention_days",
	"backup.external_mount",
	"backup.external_subdir",
}

// AllowedKeys returns the set of valid config keys.
func AllowedKeys() []string {
	return allowedKeys
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	for _, k := range allowedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "db_path":
		return c.DBPath, nil
	case "default_return_days":
		return strconv.Itoa(c.DefaultReturnDays), nil
	case "strict_stage_order":
		return strconv.FormatBool(c.StrictStageOrder), nil
	case "log_level":
		return c.LogLevel, nil
	case "backup.dir":
		return c.Backup.Dir, nil
	case "backup.retention_days":
		return strconv.Itoa(c.Backup.RetentionDays), nil
	case "backup.external_mount":
		return c.Backup.ExternalMount, nil
	case "backup.external_subdir":
		return c.Backup.ExternalSubdir, nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// SetKey reads the TOML file at path, sets key=value, and writes it back.
func SetKey(path, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	parsedValue, err := parseSetValue(key, value)
	if err != nil {
		return err
	}
	if err := setNestedKey(data, strings.Split(key, "."), parsedValue); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

func parseSetValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "default_return_days", "backup.retention_days":
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer", key)
		}
		return parsed, nil
	case "strict_stage_order":
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s must be true or false", key)
		}
		return parsed, nil
	default:
		return value, nil
	}
}

func setNestedKey(data map[string]any, parts []string, value any) error {
	if len(parts) == 0 {
		return fmt.Errorf("invalid config key")
	}
	if len(parts) == 1 {
		data[parts[0]] = value
		return nil
	}
	childRaw, ok := data[parts[0]]
	if !ok {
		child := map[string]any{}
		data[parts[0]] = child
		return setNestedKey(child, parts[1:], value)
	}
	child, ok := childRaw.(map[string]any)
	if !ok {
		return fmt.Errorf("cannot set nested key %q", strings.Join(parts, "."))
	}
	return setNestedKey(child, parts[1:], value)
}
