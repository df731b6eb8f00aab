package domain

// Document represents a single markdown file in the question bank.
type Document struct {
	// Path is the file's path relative to its source root.
	Path     string
	Title    string
	Slug     string
	Category string
	Metadata map[string]any
	Sections []Section
	Snippets []Snippet
	Links    []Link
	Content  string
	Hash     string
}

// Section is a heading within a document.
type Section struct {
	Level  int
	Text   string
	Anchor string
	Line   int
}

// Snippet is a fenced code block with its info-string language tag.
type Snippet struct {
	Language string
	Body     string
	// Section is the anchor of the nearest preceding heading, if any.
	Section string
	Line    int
}

// Link is a markdown link found in document prose.
// Target is the path part (empty for same-document links) and Fragment
// the part after '#'.
type Link struct {
	Target   string
	Fragment string
	Line     int
}

// Category groups documents, typically a difficulty tier such as
// "basic", "intermediate" or "advanced".
type Category struct {
	Name      string
	Documents []Document
}
