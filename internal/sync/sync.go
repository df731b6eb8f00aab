package sync

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/sqlshelf/sqlshelf/internal/corpus"
	"github.com/sqlshelf/sqlshelf/internal/gitsource"
	"github.com/sqlshelf/sqlshelf/internal/storage"
)

// Options controls which files a source contributes and where git
// sources are checked out.
type Options struct {
	ReposDir string
	Include  []string
	Exclude  []string
}

// Stats summarizes one source reconciliation.
type Stats struct {
	Parsed   int
	Inserted int
	Deleted  int
	Errors   int
}

// Run iterates over all sources and reconciles each into the catalog.
func Run(ctx context.Context, db *storage.DB, opts Options) error {
	slog.Info("Starting sync process for all sources...")
	sources, err := db.GetAllSources()
	if err != nil {
		return fmt.Errorf("failed to get sources: %w", err)
	}

	if len(sources) == 0 {
		slog.Info("No sources configured. Add one with 'sqlshelf sync --add <path/or/url.git>'")
		return nil
	}

	reposDir := opts.ReposDir
	if reposDir == "" {
		reposDir = "repos"
	}
	if err := os.MkdirAll(reposDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create repos directory: %w", err)
	}

	for _, source := range sources {
		slog.Info("Syncing source", "id", source.ID, "type", source.Type, "path", source.Path)

		root := source.Path
		if source.Type == "git" {
			localRepoPath, err := gitURLToLocalPath(reposDir, source.Path)
			if err != nil {
				slog.Error("Error determining local path for git repo", "url", source.Path, "error", err)
				continue
			}
			if err := gitsource.Sync(ctx, source.Path, localRepoPath); err != nil {
				slog.Error("Error syncing git repo", "url", source.Path, "error", err)
				continue
			}
			root = localRepoPath
		}

		stats := reconcileSource(db, source, root, opts)
		slog.Info("reconciliation complete",
			"path", source.Path,
			"parsed", stats.Parsed,
			"inserted", stats.Inserted,
			"orphaned_deleted", stats.Deleted,
			"errors", stats.Errors,
		)
	}
	slog.Info("Sync process complete.")
	return nil
}

// reconcileSource loads the corpus under root and reconciles it against
// the catalog rows attributed to the source: new hashes are inserted,
// hashes no longer present are deleted. An edited file shows up as a new
// hash plus an orphaned old one, so updates fall out of the same two steps.
func reconcileSource(db *storage.DB, source storage.Source, root string, opts Options) Stats {
	var stats Stats

	docs, parseErrs, err := corpus.Load(root, opts.Include, opts.Exclude)
	if err != nil {
		slog.Error("Error walking directory", "path", root, "error", err)
		stats.Errors++
		return stats
	}
	for _, e := range parseErrs {
		slog.Warn("Skipping unparsable file", "error", e)
	}
	stats.Errors += len(parseErrs)
	stats.Parsed = len(docs)

	foundHashes := make(map[string]bool, len(docs))
	for _, doc := range docs {
		foundHashes[doc.Hash] = true

		existing, findErr := db.FindDocumentByHash(doc.Hash)
		if findErr != nil {
			slog.Error("Catalog lookup failed", "path", doc.Path, "error", findErr)
			stats.Errors++
			continue
		}
		if existing == nil {
			slog.Info("New document found, inserting...", "path", doc.Path, "hash", doc.Hash)
			if insertErr := db.InsertDocument(doc, source.ID); insertErr != nil {
				slog.Error("Catalog insert failed", "path", doc.Path, "error", insertErr)
				stats.Errors++
				continue
			}
			stats.Inserted++
		}
	}

	dbDocs, err := db.GetDocumentsBySourceID(source.ID)
	if err != nil {
		slog.Error("Error getting documents for source", "source_id", source.ID, "error", err)
		stats.Errors++
		return stats
	}
	for _, dbDoc := range dbDocs {
		if !foundHashes[dbDoc.Hash] {
			slog.Info("Orphaned document, deleting", "path", dbDoc.Path, "hash", dbDoc.Hash)
			if err := db.DeleteDocumentByHash(dbDoc.Hash); err != nil {
				slog.Warn("Failed to delete orphaned document", "hash", dbDoc.Hash, "error", err)
				stats.Errors++
				continue
			}
			stats.Deleted++
		}
	}

	if err := db.UpdateSourceLastScanned(source.ID); err != nil {
		slog.Warn("Failed to update last scanned for source", "source_id", source.ID, "error", err)
	}
	return stats
}

// SourceType guesses whether a path names a git remote or a local directory.
func SourceType(path string) string {
	if strings.HasSuffix(path, ".git") || strings.HasPrefix(path, "git@") ||
		strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "http://") {
		return "git"
	}
	return "local"
}

func gitURLToLocalPath(baseDir, repoURL string) (string, error) {
	parsedURL, err := url.Parse(repoURL)
	if err != nil || (parsedURL.Scheme != "https" && parsedURL.Scheme != "http") {
		if strings.Contains(repoURL, "@") {
			parts := strings.Split(repoURL, ":")
			if len(parts) == 2 {
				hostAndUser := strings.Split(parts[0], "@")
				if len(hostAndUser) == 2 {
					host := hostAndUser[1]
					repoPath := strings.TrimSuffix(parts[1], ".git")
					return filepath.Join(baseDir, host, repoPath), nil
				}
			}
		}
		return "", fmt.Errorf("could not parse git URL: %s", repoURL)
	}

	sanitizedPath := strings.TrimSuffix(parsedURL.Path, ".git")
	return filepath.Join(baseDir, parsedURL.Host, sanitizedPath), nil
}
