// Package render turns a parsed corpus into navigable HTML, either
// written out as a static site or served live by the web server.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sqlshelf/sqlshelf/internal/domain"
	"github.com/sqlshelf/sqlshelf/internal/lint"
	"github.com/sqlshelf/sqlshelf/internal/slug"
	"github.com/sqlshelf/sqlshelf/internal/toc"
)

//go:embed all:templates
var templateFiles embed.FS

// Renderer executes the embedded page templates.
type Renderer struct {
	templates *template.Template
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	tpl, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{templates: tpl}, nil
}

// DocView is one document entry in a listing.
type DocView struct {
	Title string
	Href  string
	Path  string
}

// CategoryView is one category block on the index page.
type CategoryView struct {
	Name string
	Href string
	Docs []DocView
}

// IndexData feeds the index template.
type IndexData struct {
	Categories []CategoryView
	IssueCount int
	LintHref   string
}

// CategoryData feeds the category template.
type CategoryData struct {
	Name      string
	Docs      []DocView
	IndexHref string
}

// DocumentData feeds the document template.
type DocumentData struct {
	Title     string
	Path      string
	Category  string
	TOC       []*toc.Entry
	Body      template.HTML
	IndexHref string
}

// LintData feeds the lint report template.
type LintData struct {
	Issues    []lint.Issue
	IndexHref string
}

// SearchData feeds the search template.
type SearchData struct {
	Query     string
	Results   []DocView
	IndexHref string
}

func (r *Renderer) Index(w io.Writer, data IndexData) error {
	return r.templates.ExecuteTemplate(w, "index", data)
}

func (r *Renderer) Category(w io.Writer, data CategoryData) error {
	return r.templates.ExecuteTemplate(w, "category", data)
}

func (r *Renderer) Document(w io.Writer, data DocumentData) error {
	return r.templates.ExecuteTemplate(w, "document", data)
}

func (r *Renderer) Lint(w io.Writer, data LintData) error {
	return r.templates.ExecuteTemplate(w, "lint", data)
}

func (r *Renderer) Search(w io.Writer, data SearchData) error {
	return r.templates.ExecuteTemplate(w, "search", data)
}

// PagePath maps a corpus-relative markdown path to its rendered page
// path, mirroring the corpus layout so relative links keep working.
func PagePath(mdPath string) string {
	p := filepath.ToSlash(mdPath)
	return strings.TrimSuffix(p, ".md") + ".html"
}

// CategoryPagePath names the static page for a category. The name is
// slugged so categories with spaces or slashes stay flat single files.
func CategoryPagePath(name string) string {
	return "category-" + slug.Make(name) + ".html"
}

// DocTitle falls back to the file path when a document has no heading.
func DocTitle(title, path string) string {
	if title != "" {
		return title
	}
	return path
}

// WriteSite renders the whole corpus into outDir: an index page, one
// page per category, one page per document, and the lint report.
// Existing files are overwritten; nothing outside outDir is touched.
func (r *Renderer) WriteSite(outDir string, docs []*domain.Document, issues []lint.Issue) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	categories := toc.BuildCorpus(docs)

	var views []CategoryView
	for _, cat := range categories {
		view := CategoryView{Name: cat.Name, Href: CategoryPagePath(cat.Name)}
		for _, d := range cat.Documents {
			view.Docs = append(view.Docs, DocView{
				Title: DocTitle(d.Title, d.Path),
				Href:  PagePath(d.Path),
				Path:  d.Path,
			})
		}
		views = append(views, view)
	}

	if err := r.writePage(filepath.Join(outDir, "index.html"), func(w io.Writer) error {
		return r.Index(w, IndexData{Categories: views, IssueCount: len(issues), LintHref: "lint.html"})
	}); err != nil {
		return err
	}

	if err := r.writePage(filepath.Join(outDir, "lint.html"), func(w io.Writer) error {
		return r.Lint(w, LintData{Issues: issues, IndexHref: "index.html"})
	}); err != nil {
		return err
	}

	for _, view := range views {
		data := CategoryData{Name: view.Name, Docs: view.Docs, IndexHref: "index.html"}
		if err := r.writePage(filepath.Join(outDir, view.Href), func(w io.Writer) error {
			return r.Category(w, data)
		}); err != nil {
			return err
		}
	}

	for _, doc := range docs {
		page := filepath.Join(outDir, filepath.FromSlash(PagePath(doc.Path)))
		if err := os.MkdirAll(filepath.Dir(page), 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", doc.Path, err)
		}
		data := DocumentData{
			Title:     DocTitle(doc.Title, doc.Path),
			Path:      doc.Path,
			Category:  doc.Category,
			TOC:       toc.Build(doc),
			Body:      Fragment(doc),
			IndexHref: indexHref(doc.Path),
		}
		if err := r.writePage(page, func(w io.Writer) error {
			return r.Document(w, data)
		}); err != nil {
			return err
		}
	}

	return nil
}

func (r *Renderer) writePage(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to render %s: %w", path, err)
	}
	return f.Close()
}

// indexHref climbs back to the site root from a nested document page.
func indexHref(mdPath string) string {
	depth := strings.Count(filepath.ToSlash(mdPath), "/")
	return strings.Repeat("../", depth) + "index.html"
}
