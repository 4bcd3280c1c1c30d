// Package config handles ZokuZoku paths and user configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultHachimiAddress is the address Hachimi listens on by default.
	DefaultHachimiAddress = "127.0.0.1"
	// DefaultSQLite3 is the sqlite3 binary name used when none is configured.
	DefaultSQLite3 = "sqlite3"
	// DefaultLogLevel is the log level used when none is configured.
	DefaultLogLevel = "info"

	// EnvPrefix prefixes every environment variable override.
	EnvPrefix = "ZOKUZOKU_"

	lockTimeout = 5 * time.Second
)

// Paths holds common paths used by ZokuZoku.
type Paths struct {
	Home    string
	Config  string
	Lock    string
	Cache   string
	Logs    string
	MainLog string
}

// GetPaths returns the paths for the current user.
func GetPaths() (*Paths, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return pathsUnder(filepath.Join(configDir, "zokuzoku")), nil
}

func pathsUnder(home string) *Paths {
	logsDir := filepath.Join(home, "logs")
	return &Paths{
		Home:    home,
		Config:  filepath.Join(home, "config.yaml"),
		Lock:    filepath.Join(home, "config.lock"),
		Cache:   filepath.Join(home, "cache"),
		Logs:    logsDir,
		MainLog: filepath.Join(logsDir, "zokuzoku.log"),
	}
}

// EnsureDirectories creates the required directories if they don't exist.
func (p *Paths) EnsureDirectories() error {
	dirs := []string{p.Home, p.Cache, p.Logs}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// Decryption holds settings for the encrypted meta database.
type Decryption struct {
	Enabled bool   `yaml:"enabled"`
	MetaKey string `yaml:"meta_key,omitempty"`
}

// Config is the user configuration.
type Config struct {
	Enabled             bool       `yaml:"enabled"`
	GameDataDir         string     `yaml:"game_data_dir,omitempty"`
	LocalizeDictDump    string     `yaml:"localize_dict_dump,omitempty"`
	LocalizedDataDir    string     `yaml:"localized_data_dir,omitempty"`
	AutoDownloadBundles bool       `yaml:"auto_download_bundles"`
	SQLite3             string     `yaml:"sqlite3"`
	UseGameFont         bool       `yaml:"use_game_font"`
	CustomFont          string     `yaml:"custom_font,omitempty"`
	HachimiIPCAddress   string     `yaml:"hachimi_ipc_address"`
	LogLevel            string     `yaml:"log_level"`
	Decryption          Decryption `yaml:"decryption"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		AutoDownloadBundles: true,
		SQLite3:             DefaultSQLite3,
		UseGameFont:         true,
		HachimiIPCAddress:   DefaultHachimiAddress,
		LogLevel:            DefaultLogLevel,
		Decryption:          Decryption{Enabled: true},
	}
}

// Load reads the config file at path on top of the defaults and then applies
// environment overrides. A missing file is not an error.
//
// The result is the effective config. Persist changes with Update, never by
// writing the result back, so overrides stay out of the file.
func Load(path string) (*Config, error) {
	cfg, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile reads the defaults and the config file, without overrides.
func loadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}
	return cfg, nil
}

// Update applies fn to the config stored at path and writes it back
// atomically while holding the config lock. Only the file contents are
// passed to fn; environment overrides are never saved.
func Update(path, lockPath string, fn func(*Config)) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	lock := flock.New(lockPath)
	ok, err := tryLock(lock)
	if err != nil {
		return fmt.Errorf("acquire config lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("config is locked by another process: %s", lockPath)
	}
	defer lock.Unlock()

	cfg, err := loadFile(path)
	if err != nil {
		return err
	}
	fn(cfg)

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename config file: %w", err)
	}
	return nil
}

func tryLock(lock *flock.Flock) (bool, error) {
	deadline := time.Now().Add(lockTimeout)
	for {
		ok, err := lock.TryLock()
		if err != nil || ok {
			return ok, err
		}
		if time.Now().After(deadline) {
			return false, nil
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// Validate checks the config for values that cannot work.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.HachimiIPCAddress) == "" {
		return fmt.Errorf("hachimi_ipc_address cannot be empty")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q: must be debug, info, warn or error", c.LogLevel)
	}
	return nil
}

// applyEnv overrides fields from ZOKUZOKU_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"GAME_DATA_DIR":       &c.GameDataDir,
		"LOCALIZE_DICT_DUMP":  &c.LocalizeDictDump,
		"LOCALIZED_DATA_DIR":  &c.LocalizedDataDir,
		"SQLITE3":             &c.SQLite3,
		"CUSTOM_FONT":         &c.CustomFont,
		"HACHIMI_IPC_ADDRESS": &c.HachimiIPCAddress,
		"LOG_LEVEL":           &c.LogLevel,
		"DECRYPTION_META_KEY": &c.Decryption.MetaKey,
	}
	for key, field := range strs {
		if v, ok := lookup(EnvPrefix + key); ok {
			*field = v
		}
	}

	bools := map[string]*bool{
		"ENABLED":               &c.Enabled,
		"AUTO_DOWNLOAD_BUNDLES": &c.AutoDownloadBundles,
		"USE_GAME_FONT":         &c.UseGameFont,
		"DECRYPTION_ENABLED":    &c.Decryption.Enabled,
	}
	for key, field := range bools {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
		}
		*field = b
	}
	return nil
}
