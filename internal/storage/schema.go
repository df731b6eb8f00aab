package storage

const schema = `
-- The 'documents' table stores one row per markdown file in the bank.
CREATE TABLE IF NOT EXISTS documents (
    hash TEXT PRIMARY KEY,
    path TEXT NOT NULL,
    title TEXT NOT NULL,
    category TEXT NOT NULL,
    slug TEXT NOT NULL,
    content TEXT NOT NULL,
    source_id INTEGER,
    indexed_at DATETIME NOT NULL,

    FOREIGN KEY(source_id) REFERENCES sources(id)
);

-- The 'sections' table stores the heading outline of each document.
CREATE TABLE IF NOT EXISTS sections (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    document_hash TEXT NOT NULL,
    level INTEGER NOT NULL,
    text TEXT NOT NULL,
    anchor TEXT NOT NULL,
    line INTEGER NOT NULL,

    FOREIGN KEY(document_hash) REFERENCES documents(hash)
);

-- The 'snippets' table stores fenced code blocks, keyed to their document.
CREATE TABLE IF NOT EXISTS snippets (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    document_hash TEXT NOT NULL,
    language TEXT NOT NULL,
    body TEXT NOT NULL,
    section TEXT NOT NULL,
    line INTEGER NOT NULL,

    FOREIGN KEY(document_hash) REFERENCES documents(hash)
);

-- The 'sources' table tracks where documents come from, either a local
-- directory or a git repository.
CREATE TABLE IF NOT EXISTS sources (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    path TEXT NOT NULL UNIQUE,
    type TEXT NOT NULL DEFAULT 'local',
    last_scanned DATETIME
);

CREATE INDEX IF NOT EXISTS idx_documents_category ON documents(category);
CREATE INDEX IF NOT EXISTS idx_sections_document ON sections(document_hash);
CREATE INDEX IF NOT EXISTS idx_snippets_document ON snippets(document_hash);
`
