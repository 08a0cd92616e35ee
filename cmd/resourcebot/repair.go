package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jkaninda/resourcebot/internal/config"
	"github.com/jkaninda/resourcebot/internal/domain"
	"github.com/jkaninda/resourcebot/internal/store"
)

// repairCmd runs the catalog repair pass by hand. The same pass runs
// automatically at startup for the JSON backend.
var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Normalize the on-disk collection files, dropping malformed records",
	RunE: func(_ *cobra.Command, _ []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		cfg, err := config.Load(runConfigPath)
		if err != nil {
			// Repair only needs the data directory; a missing bot token
			// must not block it.
			cfg = &config.Config{DataDir: runDataDir}
			if cfg.DataDir == "" {
				return err
			}
		}
		if runDataDir != "" {
			cfg.DataDir = runDataDir
		}

		for _, collection := range []string{domain.CollectionPending, domain.CollectionApproved} {
			path := filepath.Join(cfg.DataDir, collection+".json")
			if err := store.RepairFile(path, logger); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	repairCmd.Flags().StringVar(&runConfigPath, "config", config.DefaultConfigPath(), "path to config file")
	repairCmd.Flags().StringVar(&runDataDir, "data-dir", "", "data directory holding the collection files")
}
