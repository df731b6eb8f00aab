package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sqlshelf/sqlshelf/internal/config"
	"github.com/sqlshelf/sqlshelf/internal/corpus"
	"github.com/sqlshelf/sqlshelf/internal/lint"
)

var lintCmd = &cobra.Command{
	Use:   "lint [dir]",
	Short: "Check a corpus directory for structural problems",
	Long: `Lint parses every markdown file under the given directory (default
".") and reports broken table-of-contents fragments, colliding heading
anchors, dangling relative links, and SQL blocks that do not look like
SQL. Exits non-zero when any error-severity finding exists.`,
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
			fmt.Fprintf(os.Stderr, "parse error: %v\n", e)
		}

		issues := lint.Run(docs)
		errorCount := 0
		for _, issue := range issues {
			fmt.Println(issue)
			if issue.Severity == lint.SeverityError {
				errorCount++
			}
		}

		fmt.Printf("%d file(s) checked, %d finding(s), %d error(s).\n",
			len(docs), len(issues), errorCount)

		if errorCount > 0 || len(parseErrs) > 0 {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lintCmd)
	lintCmd.Flags().StringSlice("include", nil, "Glob patterns of files to include (default **/*.md)")
	lintCmd.Flags().StringSlice("exclude", nil, "Glob patterns of files to exclude")
}
