package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sqlshelf/sqlshelf/internal/config"
	"github.com/sqlshelf/sqlshelf/internal/storage"
)

var (
	listJSON     bool
	listCategory string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cataloged documents",
	Args:  cobra.NoArgs,
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

		var records []storage.DocumentRecord
		if listCategory != "" {
			records, err = db.GetDocumentsByCategory(listCategory)
		} else {
			records, err = db.GetAllDocuments()
		}
		if err != nil {
			return err
		}

		if listJSON {
			type docOut struct {
				Path     string `json:"path"`
				Title    string `json:"title"`
				Category string `json:"category"`
				Hash     string `json:"hash"`
			}
			out := make([]docOut, 0, len(records))
			for _, rec := range records {
				out = append(out, docOut{
					Path:     rec.Path,
					Title:    rec.Title,
					Category: rec.Category,
					Hash:     rec.Hash,
				})
			}
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(out)
		}

		for _, rec := range records {
			title := rec.Title
			if title == "" {
				title = "(untitled)"
			}
			fmt.Printf("%-14s %-40s %s\n", rec.Category, rec.Path, title)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringVar(&listCategory, "category", "", "Filter documents by category")
}
