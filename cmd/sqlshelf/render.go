package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sqlshelf/sqlshelf/internal/config"
	"github.com/sqlshelf/sqlshelf/internal/corpus"
	"github.com/sqlshelf/sqlshelf/internal/lint"
	"github.com/sqlshelf/sqlshelf/internal/render"
)

var renderCmd = &cobra.Command{
	Use:   "render [dir]",
	Short: "Render a corpus directory as a static HTML site",
	Long: `Render parses every markdown file under the given directory (default
".") and writes a browsable static site to the output directory: a corpus
index grouped by difficulty tier, one page per category and document, and
the lint report.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFile(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}

		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		docs, parseErrs, err := corpus.Load(dir, cfg.Include, cfg.Exclude)
		if err != nil {
			return err
		}
		for _, e := range parseErrs {
			fmt.Printf("skipping: %v\n", e)
		}

		renderer, err := render.New()
		if err != nil {
			return err
		}
		if err := renderer.WriteSite(cfg.OutputDir, docs, lint.Run(docs)); err != nil {
			return err
		}

		fmt.Printf("Rendered %d document(s) to %s\n", len(docs), cfg.OutputDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().String("output-dir", "site", "Directory to write the site into")
	renderCmd.Flags().StringSlice("include", nil, "Glob patterns of files to include (default **/*.md)")
	renderCmd.Flags().StringSlice("exclude", nil, "Glob patterns of files to exclude")
}
