// Package config resolves runtime settings from defaults, an optional
// config.yaml in the data directory, a local .env file and HRBOARD_*
// environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/rhinspira/hrboard/pkg/blob"
)

const envPrefix = "HRBOARD"

// Backend names a storage medium.
type Backend string

const (
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
	BackendRedis  Backend = "redis"
	BackendMemory Backend = "memory"
)

// Config keys, shared by viper defaults, env names and flag overrides.
const (
	KeyDataDir          = "data_dir"
	KeyBackend          = "backend"
	KeyStorageKey       = "storage_key"
	KeyRedisURL         = "redis_url"
	KeyAutosaveInterval = "autosave_interval"
	KeyManualSaveDelay  = "manual_save_delay"
	KeyLogLevel         = "log_level"
	KeyHistory          = "history"
	KeyMetricsAddr      = "metrics_addr"
)

// Config describes runtime configuration.
type Config struct {
	DataDir          string        `mapstructure:"data_dir"`
	Backend          Backend       `mapstructure:"backend"`
	StorageKey       string        `mapstructure:"storage_key"`
	RedisURL         string        `mapstructure:"redis_url"`
	AutosaveInterval time.Duration `mapstructure:"autosave_interval"`
	ManualSaveDelay  time.Duration `mapstructure:"manual_save_delay"`
	LogLevel         string        `mapstructure:"log_level"`
	History          bool          `mapstructure:"history"`
	MetricsAddr      string        `mapstructure:"metrics_addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DataDir:          DefaultDataDir(),
		Backend:          BackendFile,
		StorageKey:       "rh_dashboard_data_v1",
		RedisURL:         "redis://localhost:6379/0",
		AutosaveInterval: 60 * time.Second,
		ManualSaveDelay:  500 * time.Millisecond,
		LogLevel:         "info",
		History:          true,
	}
}

// ConfigPath returns where the optional config file lives for dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config.yaml")
}

// Load resolves the configuration. overrides holds explicit values (from
// command-line flags) keyed by the Key constants; empty values are ignored.
func Load(overrides map[string]string) (Config, error) {
	if err := loadDotEnvIfPresent(".env"); err != nil {
		return Config{}, err
	}

	def := Default()
	v := viper.New()
	v.SetDefault(KeyDataDir, def.DataDir)
	v.SetDefault(KeyBackend, string(def.Backend))
	v.SetDefault(KeyStorageKey, def.StorageKey)
	v.SetDefault(KeyRedisURL, def.RedisURL)
	v.SetDefault(KeyAutosaveInterval, def.AutosaveInterval)
	v.SetDefault(KeyManualSaveDelay, def.ManualSaveDelay)
	v.SetDefault(KeyLogLevel, def.LogLevel)
	v.SetDefault(KeyHistory, def.History)
	v.SetDefault(KeyMetricsAddr, def.MetricsAddr)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	for key, value := range overrides {
		if strings.TrimSpace(value) != "" {
			v.Set(key, strings.TrimSpace(value))
		}
	}

	// The config file lives in the data dir, so the dir is fixed before it
	// is read and cannot be moved by it.
	home, _ := os.UserHomeDir()
	dataDir := expandHome(strings.TrimSpace(v.GetString(KeyDataDir)), home)
	v.Set(KeyDataDir, dataDir)

	if err := mergeFile(v, ConfigPath(dataDir)); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Backend = Backend(strings.ToLower(string(cfg.Backend)))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func mergeFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

func loadDotEnvIfPresent(path string) error {
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}

	var pathErr *os.PathError
	if errors.As(err, &pathErr) && errors.Is(pathErr.Err, os.ErrNotExist) {
		return nil
	}

	return err
}

// Validate checks the settings that have no safe fallback.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendFile, BackendSQLite, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("invalid %s: %q (use file, sqlite, redis or memory)", KeyBackend, c.Backend)
	}
	if c.DataDir == "" {
		return fmt.Errorf("%s is required", KeyDataDir)
	}
	if strings.TrimSpace(c.StorageKey) == "" {
		return fmt.Errorf("%s is required", KeyStorageKey)
	}
	if err := blob.ValidateKey(c.StorageKey); err != nil {
		return fmt.Errorf("invalid %s: %w", KeyStorageKey, err)
	}
	if c.AutosaveInterval <= 0 {
		return fmt.Errorf("%s must be greater than zero", KeyAutosaveInterval)
	}
	if c.ManualSaveDelay < 0 {
		return fmt.Errorf("%s must not be negative", KeyManualSaveDelay)
	}
	if c.Backend == BackendRedis {
		parsed, err := url.Parse(c.RedisURL)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", KeyRedisURL, err)
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("invalid %s: must include scheme and host", KeyRedisURL)
		}
	}
	return nil
}
