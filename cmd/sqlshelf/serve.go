package main

import (
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/sqlshelf/sqlshelf/internal/config"
	"github.com/sqlshelf/sqlshelf/internal/storage"
	"github.com/sqlshelf/sqlshelf/internal/sync"
	"github.com/sqlshelf/sqlshelf/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the question bank for browsing",
	Long: `Serve starts the web UI over the catalog: corpus index, rendered
document pages, category listings, full-text search, and the lint report.
With --watch, local sources are watched and re-synced on change.`,
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

		opts := sync.Options{
			ReposDir: cfg.ReposDir,
			Include:  cfg.Include,
			Exclude:  cfg.Exclude,
		}

		server, err := web.NewServer(db, opts)
		if err != nil {
			return err
		}

		if cfg.Watch {
			go func() {
				if err := sync.Watch(cmd.Context(), db, opts); err != nil {
					slog.Error("Watcher stopped", "error", err)
				}
			}()
		}

		slog.Info("Serving question bank", "addr", cfg.ListenAddr)
		return http.ListenAndServe(cfg.ListenAddr, server)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen-addr", "localhost:8347", "Address to listen on")
	serveCmd.Flags().Bool("watch", false, "Re-sync local sources when their files change")
	serveCmd.Flags().String("repos-dir", "repos", "Directory where git sources are checked out")
}
