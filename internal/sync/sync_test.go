package sync

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sqlshelf/sqlshelf/internal/storage"
)

func openTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRunInsertsAndReconciles(t *testing.T) {
	db := openTestDB(t)
	root := t.TempDir()
	writeFile(t, root, "basic/joins.md", "# Joins\n\n```sql\nSELECT 1;\n```\n")
	writeFile(t, root, "basic/select.md", "# Select\n")

	if _, err := db.InsertSource(root, "local"); err != nil {
		t.Fatalf("InsertSource returned error: %v", err)
	}

	opts := Options{ReposDir: filepath.Join(t.TempDir(), "repos")}
	if err := Run(context.Background(), db, opts); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	docs, err := db.GetAllDocuments()
	if err != nil {
		t.Fatalf("GetAllDocuments returned error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("Expected 2 documents after first sync, got %d", len(docs))
	}

	// Editing a file replaces its row: the new hash is inserted and the
	// old one reconciled away as an orphan.
	writeFile(t, root, "basic/joins.md", "# Joins\n\nNow with more detail.\n")
	if err := Run(context.Background(), db, opts); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	docs, err = db.GetAllDocuments()
	if err != nil {
		t.Fatalf("GetAllDocuments returned error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("Expected 2 documents after edit, got %d", len(docs))
	}

	// Removing a file orphans its row.
	if err := os.Remove(filepath.Join(root, "basic", "select.md")); err != nil {
		t.Fatal(err)
	}
	if err := Run(context.Background(), db, opts); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	docs, err = db.GetAllDocuments()
	if err != nil {
		t.Fatalf("GetAllDocuments returned error: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("Expected 1 document after removal, got %d", len(docs))
	}
	if docs[0].Path != "basic/joins.md" {
		t.Errorf("Unexpected surviving document: %+v", docs[0])
	}
}

func TestRunSecondSyncIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	root := t.TempDir()
	writeFile(t, root, "basic/joins.md", "# Joins\n")

	if _, err := db.InsertSource(root, "local"); err != nil {
		t.Fatalf("InsertSource returned error: %v", err)
	}

	opts := Options{ReposDir: filepath.Join(t.TempDir(), "repos")}
	for i := 0; i < 2; i++ {
		if err := Run(context.Background(), db, opts); err != nil {
			t.Fatalf("Run %d returned error: %v", i, err)
		}
	}

	docs, err := db.GetAllDocuments()
	if err != nil {
		t.Fatalf("GetAllDocuments returned error: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("Expected 1 document, got %d", len(docs))
	}
}

func TestRunNoSources(t *testing.T) {
	db := openTestDB(t)
	if err := Run(context.Background(), db, Options{ReposDir: t.TempDir()}); err != nil {
		t.Fatalf("Run with no sources should be a no-op, got error: %v", err)
	}
}

func TestSourceType(t *testing.T) {
	testCases := []struct {
		path     string
		expected string
	}{
		{"/home/me/questions", "local"},
		{"./corpus", "local"},
		{"https://github.com/acme/sql-questions.git", "git"},
		{"git@github.com:acme/sql-questions.git", "git"},
	}
	for _, tc := range testCases {
		if got := SourceType(tc.path); got != tc.expected {
			t.Errorf("SourceType(%q) = %q, want %q", tc.path, got, tc.expected)
		}
	}
}

func TestGitURLToLocalPath(t *testing.T) {
	testCases := []struct {
		name     string
		url      string
		expected string
		wantErr  bool
	}{
		{
			name:     "https url",
			url:      "https://github.com/acme/sql-questions.git",
			expected: filepath.Join("repos", "github.com", "acme", "sql-questions"),
		},
		{
			name:     "ssh url",
			url:      "git@github.com:acme/sql-questions.git",
			expected: filepath.Join("repos", "github.com", "acme", "sql-questions"),
		},
		{
			name:    "garbage",
			url:     "not a url at all",
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := gitURLToLocalPath("repos", tc.url)
			if tc.wantErr {
				if err == nil {
					t.Errorf("Expected error for %q", tc.url)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}
