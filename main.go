package main

import (
	"fmt"
	"os"

	"github.com/camden-git/familytreebackend/config"
	"github.com/camden-git/familytreebackend/database"
	"github.com/camden-git/familytreebackend/repository"
	"github.com/camden-git/familytreebackend/storage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	logger  *logrus.Logger
	cfg     config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "familytree",
	Short: "Family tree backend and data tools",
	Long: `familytree serves the family tree API and provides offline tools to
merge, export, import and verify tree documents and to list saved versions.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logrus.New()
		logger.SetLevel(logrus.InfoLevel)

		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
			logger.SetLevel(level)
		} else {
			logger.WithError(err).Warnf("unknown log level %q, using info", cfg.LogLevel)
		}
		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(snapshotsCmd)
}

// openStorage opens the configured backend. The returned func releases it.
func openStorage(cfg config.Config, log *logrus.Logger) (storage.Adapter, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Storage {
	case config.StorageFile:
		log.WithField("path", cfg.DataFile).Info("using file storage")
		return storage.NewFileAdapter(cfg.DataFile), noop, nil

	case config.StorageBolt:
		adapter, err := storage.OpenBoltAdapter(cfg.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		log.WithField("path", cfg.BoltPath).Info("using bolt storage")
		return adapter, adapter.Close, nil

	case config.StorageSQLite:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create data directory %s: %w", cfg.DataDir, err)
		}
		db, err := database.InitDB(cfg.DatabasePath, log)
		if err != nil {
			return nil, nil, err
		}
		return database.NewSnapshotStore(db, cfg.SnapshotKeep), db.Close, nil

	case config.StorageGorm:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create data directory %s: %w", cfg.DataDir, err)
		}
		db, err := database.InitGormDB(cfg.DatabasePath, log)
		if err != nil {
			return nil, nil, err
		}
		if err := database.AutoMigrateModels(db); err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get underlying sql.DB from GORM: %w", err)
		}
		return repository.NewPersonRepository(db), sqlDB.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
}
