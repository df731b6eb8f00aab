package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sqlshelf/sqlshelf/internal/config"
	"github.com/sqlshelf/sqlshelf/internal/storage"
	"github.com/sqlshelf/sqlshelf/internal/sync"
)

var addSources []string

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile all sources into the catalog",
	Long: `Sync walks every registered source (local directory or git URL),
parses the markdown it finds, and reconciles the catalog: new documents
are inserted, vanished ones removed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFile(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}

		db, err := storage.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := registerSources(db, append(cfg.Sources, addSources...)); err != nil {
			return err
		}

		return sync.Run(cmd.Context(), db, sync.Options{
			ReposDir: cfg.ReposDir,
			Include:  cfg.Include,
			Exclude:  cfg.Exclude,
		})
	},
}

// registerSources inserts any source paths the catalog does not know yet.
func registerSources(db *storage.DB, paths []string) error {
	for _, path := range paths {
		if path == "" {
			continue
		}
		existing, err := db.FindSourceByPath(path)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		sourceType := sync.SourceType(path)
		if sourceType == "local" {
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("source %s: %w", path, err)
			}
		}
		if _, err := db.InsertSource(path, sourceType); err != nil {
			return err
		}
		fmt.Printf("Registered %s source: %s\n", sourceType, path)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().StringSliceVar(&addSources, "add", nil, "Register a source path or git URL before syncing (repeatable)")
	syncCmd.Flags().String("repos-dir", "repos", "Directory where git sources are checked out")
	syncCmd.Flags().StringSlice("include", nil, "Glob patterns of files to include (default **/*.md)")
	syncCmd.Flags().StringSlice("exclude", nil, "Glob patterns of files to exclude")
}
