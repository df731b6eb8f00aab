package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sqlshelf/sqlshelf/internal/domain"
	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// DB represents a wrapper around the SQL database connection.
type DB struct {
	conn *sql.DB
}

// Open creates a new database connection and ensures the schema is up to date.
func Open(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Execute the schema to create tables if they don't exist.
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{conn: db}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// DocumentRecord is a catalog row for one markdown file.
type DocumentRecord struct {
	Hash      string
	Path      string
	Title     string
	Category  string
	Slug      string
	Content   string
	SourceID  sql.NullInt64
	IndexedAt time.Time
}

// InsertDocument inserts a document and its sections and snippets in a
// single transaction.
func (db *DB) InsertDocument(doc *domain.Document, sourceID int64) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO documents (hash, path, title, category, slug, content, source_id, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		doc.Hash,
		doc.Path,
		doc.Title,
		doc.Category,
		doc.Slug,
		doc.Content,
		sourceID,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert document %s: %w", doc.Path, err)
	}

	for _, s := range doc.Sections {
		if _, err := tx.Exec(`
			INSERT INTO sections (document_hash, level, text, anchor, line)
			VALUES (?, ?, ?, ?, ?)
		`, doc.Hash, s.Level, s.Text, s.Anchor, s.Line); err != nil {
			return fmt.Errorf("failed to insert section %q of %s: %w", s.Text, doc.Path, err)
		}
	}

	for _, sn := range doc.Snippets {
		if _, err := tx.Exec(`
			INSERT INTO snippets (document_hash, language, body, section, line)
			VALUES (?, ?, ?, ?, ?)
		`, doc.Hash, sn.Language, sn.Body, sn.Section, sn.Line); err != nil {
			return fmt.Errorf("failed to insert snippet at line %d of %s: %w", sn.Line, doc.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit document %s: %w", doc.Path, err)
	}
	return nil
}

// FindDocumentByHash retrieves a catalog row by its content hash.
func (db *DB) FindDocumentByHash(hash string) (*DocumentRecord, error) {
	var rec DocumentRecord
	row := db.conn.QueryRow(`
		SELECT hash, path, title, category, slug, content, source_id, indexed_at
		FROM documents WHERE hash = ?
	`, hash)

	err := row.Scan(
		&rec.Hash,
		&rec.Path,
		&rec.Title,
		&rec.Category,
		&rec.Slug,
		&rec.Content,
		&rec.SourceID,
		&rec.IndexedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Document not found
		}
		return nil, fmt.Errorf("failed to find document by hash %s: %w", hash, err)
	}
	return &rec, nil
}

// GetDocumentsBySourceID retrieves all documents associated with a source.
func (db *DB) GetDocumentsBySourceID(sourceID int64) ([]DocumentRecord, error) {
	return db.queryDocuments(`
		SELECT hash, path, title, category, slug, content, source_id, indexed_at
		FROM documents WHERE source_id = ? ORDER BY path
	`, sourceID)
}

// GetAllDocuments retrieves every document in the catalog ordered by path.
func (db *DB) GetAllDocuments() ([]DocumentRecord, error) {
	return db.queryDocuments(`
		SELECT hash, path, title, category, slug, content, source_id, indexed_at
		FROM documents ORDER BY path
	`)
}

// GetDocumentsByCategory retrieves the documents of one category.
func (db *DB) GetDocumentsByCategory(category string) ([]DocumentRecord, error) {
	return db.queryDocuments(`
		SELECT hash, path, title, category, slug, content, source_id, indexed_at
		FROM documents WHERE category = ? ORDER BY path
	`, category)
}

// SearchDocuments finds documents whose title or content contains the
// query, case-insensitively.
func (db *DB) SearchDocuments(query string) ([]DocumentRecord, error) {
	pattern := "%" + query + "%"
	return db.queryDocuments(`
		SELECT hash, path, title, category, slug, content, source_id, indexed_at
		FROM documents
		WHERE title LIKE ? OR content LIKE ?
		ORDER BY path
	`, pattern, pattern)
}

func (db *DB) queryDocuments(q string, args ...any) ([]DocumentRecord, error) {
	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var records []DocumentRecord
	for rows.Next() {
		var rec DocumentRecord
		if err := rows.Scan(
			&rec.Hash,
			&rec.Path,
			&rec.Title,
			&rec.Category,
			&rec.Slug,
			&rec.Content,
			&rec.SourceID,
			&rec.IndexedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteDocumentByHash removes a document and its sections and snippets.
func (db *DB) DeleteDocumentByHash(hash string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM sections WHERE document_hash = ?`, hash); err != nil {
		return fmt.Errorf("failed to delete sections of %s: %w", hash, err)
	}
	if _, err := tx.Exec(`DELETE FROM snippets WHERE document_hash = ?`, hash); err != nil {
		return fmt.Errorf("failed to delete snippets of %s: %w", hash, err)
	}
	if _, err := tx.Exec(`DELETE FROM documents WHERE hash = ?`, hash); err != nil {
		return fmt.Errorf("failed to delete document %s: %w", hash, err)
	}
	return tx.Commit()
}

// CategoryCount pairs a category name with its document count.
type CategoryCount struct {
	Name  string
	Count int
}

// ListCategories returns category names with document counts, ordered by name.
func (db *DB) ListCategories() ([]CategoryCount, error) {
	rows, err := db.conn.Query(`
		SELECT category, COUNT(*) FROM documents GROUP BY category ORDER BY category
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var counts []CategoryCount
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
