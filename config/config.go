package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends.
const (
	StorageFile   = "file"
	StorageBolt   = "bolt"
	StorageSQLite = "sqlite"
	StorageGorm   = "gorm"
)

const (
	defaultListenAddr    = ":8080"
	defaultDataDir       = "data"
	defaultAutosaveDelay = 500 * time.Millisecond
	defaultSnapshotKeep  = 50
)

type Config struct {
	// http
	ListenAddr     string
	AllowedOrigins []string

	// storage
	Storage      string // file, bolt, sqlite or gorm
	DataDir      string
	DataFile     string // json file for the file backend
	BoltPath     string
	DatabasePath string // sqlite file for the sqlite and gorm backends
	SnapshotKeep int    // versions kept by the sqlite backend, 0 keeps all

	// engine
	IDStrategy  string // sequential or random
	SeedOnEmpty bool

	// autosave coalescing window
	AutosaveDelay time.Duration

	LogLevel string
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("listen_addr", defaultListenAddr)
	v.SetDefault("allowed_origins", "*")
	v.SetDefault("storage", StorageFile)
	v.SetDefault("data_dir", defaultDataDir)
	v.SetDefault("data_file", "")
	v.SetDefault("bolt_path", "")
	v.SetDefault("database_path", "")
	v.SetDefault("snapshot_keep", defaultSnapshotKeep)
	v.SetDefault("id_strategy", "sequential")
	v.SetDefault("seed_on_empty", true)
	v.SetDefault("autosave_delay", defaultAutosaveDelay)
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("FAMILYTREE")
	v.AutomaticEnv()
	return v
}

// LoadConfig reads .env (when present) and FAMILYTREE_* environment variables.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()
	return fromViper(newViper())
}

func fromViper(v *viper.Viper) (Config, error) {
	dataDir, err := filepath.Abs(v.GetString("data_dir"))
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for data directory '%s': %w", v.GetString("data_dir"), err)
	}

	orDefault := func(key, name string) string {
		if p := v.GetString(key); p != "" {
			return p
		}
		return filepath.Join(dataDir, name)
	}

	cfg := Config{
		ListenAddr:     v.GetString("listen_addr"),
		AllowedOrigins: splitList(v.GetString("allowed_origins")),
		Storage:        strings.ToLower(v.GetString("storage")),
		DataDir:        dataDir,
		DataFile:       orDefault("data_file", "family-tree.json"),
		BoltPath:       orDefault("bolt_path", "family-tree.db"),
		DatabasePath:   orDefault("database_path", "family-tree.sqlite"),
		SnapshotKeep:   v.GetInt("snapshot_keep"),
		IDStrategy:     strings.ToLower(v.GetString("id_strategy")),
		SeedOnEmpty:    v.GetBool("seed_on_empty"),
		AutosaveDelay:  v.GetDuration("autosave_delay"),
		LogLevel:       v.GetString("log_level"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Storage {
	case StorageFile, StorageBolt, StorageSQLite, StorageGorm:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage)
	}
	switch c.IDStrategy {
	case "", "sequential", "random":
	default:
		return fmt.Errorf("unknown id strategy %q", c.IDStrategy)
	}
	if c.SnapshotKeep < 0 {
		return fmt.Errorf("snapshot keep must not be negative, got %d", c.SnapshotKeep)
	}
	if c.AutosaveDelay < 0 {
		return fmt.Errorf("autosave delay must not be negative, got %s", c.AutosaveDelay)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
