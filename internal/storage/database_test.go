package storage

import (
	"path/filepath"
	"testing"

	"github.com/sqlshelf/sqlshelf/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleDoc(path, hash string) *domain.Document {
	return &domain.Document{
		Path:     path,
		Title:    "Joins",
		Slug:     "joins",
		Category: "basic",
		Content:  "# Joins\n\n```sql\nSELECT 1;\n```\n",
		Hash:     hash,
		Sections: []domain.Section{
			{Level: 1, Text: "Joins", Anchor: "joins", Line: 1},
		},
		Snippets: []domain.Snippet{
			{Language: "sql", Body: "SELECT 1;", Section: "joins", Line: 3},
		},
	}
}

func TestInsertAndFindDocument(t *testing.T) {
	db := openTestDB(t)

	sourceID, err := db.InsertSource("/corpus", "local")
	if err != nil {
		t.Fatalf("InsertSource returned error: %v", err)
	}

	doc := sampleDoc("basic/joins.md", "hash-1")
	if err := db.InsertDocument(doc, sourceID); err != nil {
		t.Fatalf("InsertDocument returned error: %v", err)
	}

	rec, err := db.FindDocumentByHash("hash-1")
	if err != nil {
		t.Fatalf("FindDocumentByHash returned error: %v", err)
	}
	if rec == nil {
		t.Fatal("Expected document to be found")
	}
	if rec.Title != "Joins" || rec.Category != "basic" || rec.Path != "basic/joins.md" {
		t.Errorf("Unexpected record: %+v", rec)
	}
	if !rec.SourceID.Valid || rec.SourceID.Int64 != sourceID {
		t.Errorf("Expected source ID %d, got %+v", sourceID, rec.SourceID)
	}

	missing, err := db.FindDocumentByHash("no-such-hash")
	if err != nil {
		t.Fatalf("FindDocumentByHash returned error: %v", err)
	}
	if missing != nil {
		t.Error("Expected nil for unknown hash")
	}
}

func TestDeleteDocumentByHash(t *testing.T) {
	db := openTestDB(t)

	sourceID, err := db.InsertSource("/corpus", "local")
	if err != nil {
		t.Fatalf("InsertSource returned error: %v", err)
	}
	if err := db.InsertDocument(sampleDoc("basic/joins.md", "hash-1"), sourceID); err != nil {
		t.Fatalf("InsertDocument returned error: %v", err)
	}

	if err := db.DeleteDocumentByHash("hash-1"); err != nil {
		t.Fatalf("DeleteDocumentByHash returned error: %v", err)
	}

	rec, err := db.FindDocumentByHash("hash-1")
	if err != nil {
		t.Fatalf("FindDocumentByHash returned error: %v", err)
	}
	if rec != nil {
		t.Error("Expected document to be deleted")
	}
}

func TestGetDocumentsBySourceID(t *testing.T) {
	db := openTestDB(t)

	s1, _ := db.InsertSource("/a", "local")
	s2, _ := db.InsertSource("/b", "local")

	if err := db.InsertDocument(sampleDoc("basic/one.md", "h1"), s1); err != nil {
		t.Fatalf("InsertDocument returned error: %v", err)
	}
	if err := db.InsertDocument(sampleDoc("basic/two.md", "h2"), s1); err != nil {
		t.Fatalf("InsertDocument returned error: %v", err)
	}
	if err := db.InsertDocument(sampleDoc("basic/three.md", "h3"), s2); err != nil {
		t.Fatalf("InsertDocument returned error: %v", err)
	}

	docs, err := db.GetDocumentsBySourceID(s1)
	if err != nil {
		t.Fatalf("GetDocumentsBySourceID returned error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("Expected 2 documents for source 1, got %d", len(docs))
	}
}

func TestSearchDocuments(t *testing.T) {
	db := openTestDB(t)

	sourceID, _ := db.InsertSource("/corpus", "local")
	windows := sampleDoc("advanced/windows.md", "h-win")
	windows.Title = "Window Functions"
	windows.Content = "# Window Functions\n\nRANK and DENSE_RANK compared."
	if err := db.InsertDocument(windows, sourceID); err != nil {
		t.Fatalf("InsertDocument returned error: %v", err)
	}
	if err := db.InsertDocument(sampleDoc("basic/joins.md", "h-join"), sourceID); err != nil {
		t.Fatalf("InsertDocument returned error: %v", err)
	}

	hits, err := db.SearchDocuments("DENSE_RANK")
	if err != nil {
		t.Fatalf("SearchDocuments returned error: %v", err)
	}
	if len(hits) != 1 || hits[0].Hash != "h-win" {
		t.Fatalf("Expected the window functions doc, got %v", hits)
	}

	none, err := db.SearchDocuments("no such phrase")
	if err != nil {
		t.Fatalf("SearchDocuments returned error: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Expected no hits, got %v", none)
	}
}

func TestListCategories(t *testing.T) {
	db := openTestDB(t)

	sourceID, _ := db.InsertSource("/corpus", "local")
	a := sampleDoc("advanced/windows.md", "h1")
	a.Category = "advanced"
	b := sampleDoc("basic/joins.md", "h2")
	c := sampleDoc("basic/select.md", "h3")
	for _, doc := range []*domain.Document{a, b, c} {
		if err := db.InsertDocument(doc, sourceID); err != nil {
			t.Fatalf("InsertDocument returned error: %v", err)
		}
	}

	counts, err := db.ListCategories()
	if err != nil {
		t.Fatalf("ListCategories returned error: %v", err)
	}
	if len(counts) != 2 {
		t.Fatalf("Expected 2 categories, got %v", counts)
	}
	if counts[0].Name != "advanced" || counts[0].Count != 1 {
		t.Errorf("Unexpected first category: %+v", counts[0])
	}
	if counts[1].Name != "basic" || counts[1].Count != 2 {
		t.Errorf("Unexpected second category: %+v", counts[1])
	}
}

func TestDeleteSourceCascades(t *testing.T) {
	db := openTestDB(t)

	sourceID, _ := db.InsertSource("/corpus", "local")
	if err := db.InsertDocument(sampleDoc("basic/joins.md", "h1"), sourceID); err != nil {
		t.Fatalf("InsertDocument returned error: %v", err)
	}

	if err := db.DeleteSource(sourceID); err != nil {
		t.Fatalf("DeleteSource returned error: %v", err)
	}

	src, err := db.FindSourceByPath("/corpus")
	if err != nil {
		t.Fatalf("FindSourceByPath returned error: %v", err)
	}
	if src != nil {
		t.Error("Expected source to be deleted")
	}
	rec, err := db.FindDocumentByHash("h1")
	if err != nil {
		t.Fatalf("FindDocumentByHash returned error: %v", err)
	}
	if rec != nil {
		t.Error("Expected documents to be deleted with their source")
	}
}
