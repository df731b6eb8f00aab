// Package corpus walks a question-bank directory and parses every
// matching markdown file into domain documents.
package corpus

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/sqlshelf/sqlshelf/internal/digest"
	"github.com/sqlshelf/sqlshelf/internal/domain"
	"github.com/sqlshelf/sqlshelf/internal/mdparse"
)

// DefaultInclude matches every markdown file under the corpus root.
var DefaultInclude = []string{"**/*.md"}

// Load parses all markdown files under root whose relative path matches
// one of the include globs and none of the exclude globs. A file that
// fails to parse is reported in errs and skipped; the walk continues.
func Load(root string, include, exclude []string) (docs []*domain.Document, errs []error, err error) {
	if len(include) == 0 {
		include = DefaultInclude
	}

	walkErr := fs.WalkDir(os.DirFS(root), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Hidden directories (.git and friends) are never part of
			// the corpus.
			if path != "." && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !matches(path, include) || matches(path, exclude) {
			return nil
		}

		doc, parseErr := mdparse.ParseFile(root, path)
		if parseErr != nil {
			errs = append(errs, fmt.Errorf("parsing %s: %w", path, parseErr))
			return nil
		}
		doc.Hash = digest.Sum(doc.Content)
		docs = append(docs, doc)
		return nil
	})
	if walkErr != nil {
		return nil, errs, fmt.Errorf("walking %s: %w", root, walkErr)
	}
	return docs, errs, nil
}

func matches(path string, globs []string) bool {
	for _, g := range globs {
		if ok, err := doublestar.Match(g, path); err == nil && ok {
			return true
		}
	}
	return false
}
