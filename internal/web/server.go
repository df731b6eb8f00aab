// Package web serves the question bank for browsing: the corpus index,
// rendered document pages, category listings, search, and the lint report.
package web

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/sqlshelf/sqlshelf/internal/domain"
	"github.com/sqlshelf/sqlshelf/internal/lint"
	"github.com/sqlshelf/sqlshelf/internal/mdparse"
	"github.com/sqlshelf/sqlshelf/internal/render"
	"github.com/sqlshelf/sqlshelf/internal/storage"
	"github.com/sqlshelf/sqlshelf/internal/sync"
	"github.com/sqlshelf/sqlshelf/internal/toc"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	db       *storage.DB
	router   *http.ServeMux
	renderer *render.Renderer
	syncOpts sync.Options
}

// NewServer creates and configures a new server.
func NewServer(db *storage.DB, syncOpts sync.Options) (*Server, error) {
	renderer, err := render.New()
	if err != nil {
		return nil, err
	}

	s := &Server{
		db:       db,
		router:   http.NewServeMux(),
		renderer: renderer,
		syncOpts: syncOpts,
	}
	s.routes()
	return s, nil
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// routes sets up the routing for the server.
func (s *Server) routes() {
	s.router.HandleFunc("GET /{$}", s.handleIndex)
	s.router.HandleFunc("GET /pages/", s.handleDocument)
	s.router.HandleFunc("GET /category/{name}", s.handleCategory)
	s.router.HandleFunc("GET /search", s.handleSearch)
	s.router.HandleFunc("GET /lint", s.handleLint)
	s.router.HandleFunc("POST /sync", s.handleSync)
}

// loadDocs rehydrates parsed documents from their cataloged content.
func (s *Server) loadDocs() ([]*domain.Document, error) {
	records, err := s.db.GetAllDocuments()
	if err != nil {
		return nil, err
	}
	docs := make([]*domain.Document, 0, len(records))
	for _, rec := range records {
		doc, err := mdparse.Parse(strings.NewReader(rec.Content), rec.Path)
		if err != nil {
			slog.Warn("Skipping cataloged document that no longer parses", "path", rec.Path, "error", err)
			continue
		}
		doc.Hash = rec.Hash
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	docs, err := s.loadDocs()
	if err != nil {
		slog.Error("Error loading documents for index", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var views []render.CategoryView
	for _, cat := range toc.BuildCorpus(docs) {
		view := render.CategoryView{Name: cat.Name, Href: "/category/" + url.PathEscape(cat.Name)}
		for _, d := range cat.Documents {
			view.Docs = append(view.Docs, render.DocView{
				Title: render.DocTitle(d.Title, d.Path),
				Href:  "/pages/" + render.PagePath(d.Path),
				Path:  d.Path,
			})
		}
		views = append(views, view)
	}

	data := render.IndexData{
		Categories: views,
		IssueCount: len(lint.Run(docs)),
		LintHref:   "/lint",
	}
	if err := s.renderer.Index(w, data); err != nil {
		slog.Error("Error rendering index", "error", err)
	}
}

// handleDocument serves a rendered page under the same relative path the
// static site would use, so cross-document links need no rewriting.
func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	pagePath := strings.TrimPrefix(r.URL.Path, "/pages/")
	if !strings.HasSuffix(pagePath, ".html") {
		http.NotFound(w, r)
		return
	}
	mdPath := strings.TrimSuffix(pagePath, ".html") + ".md"

	docs, err := s.loadDocs()
	if err != nil {
		slog.Error("Error loading documents", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	for _, doc := range docs {
		if doc.Path != mdPath {
			continue
		}
		data := render.DocumentData{
			Title:     render.DocTitle(doc.Title, doc.Path),
			Path:      doc.Path,
			Category:  doc.Category,
			TOC:       toc.Build(doc),
			Body:      render.Fragment(doc),
			IndexHref: "/",
		}
		if err := s.renderer.Document(w, data); err != nil {
			slog.Error("Error rendering document", "path", doc.Path, "error", err)
		}
		return
	}
	http.NotFound(w, r)
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	records, err := s.db.GetDocumentsByCategory(name)
	if err != nil {
		slog.Error("Error loading category", "category", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if len(records) == 0 {
		http.NotFound(w, r)
		return
	}

	data := render.CategoryData{Name: name, IndexHref: "/"}
	for _, rec := range records {
		data.Docs = append(data.Docs, render.DocView{
			Title: render.DocTitle(rec.Title, rec.Path),
			Href:  "/pages/" + render.PagePath(rec.Path),
			Path:  rec.Path,
		})
	}
	if err := s.renderer.Category(w, data); err != nil {
		slog.Error("Error rendering category", "category", name, "error", err)
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	data := render.SearchData{Query: query, IndexHref: "/"}

	if query != "" {
		records, err := s.db.SearchDocuments(query)
		if err != nil {
			slog.Error("Error searching documents", "query", query, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		for _, rec := range records {
			data.Results = append(data.Results, render.DocView{
				Title: render.DocTitle(rec.Title, rec.Path),
				Href:  "/pages/" + render.PagePath(rec.Path),
				Path:  rec.Path,
			})
		}
	}
	if err := s.renderer.Search(w, data); err != nil {
		slog.Error("Error rendering search", "error", err)
	}
}

func (s *Server) handleLint(w http.ResponseWriter, r *http.Request) {
	docs, err := s.loadDocs()
	if err != nil {
		slog.Error("Error loading documents for lint", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	data := render.LintData{Issues: lint.Run(docs), IndexHref: "/"}
	if err := s.renderer.Lint(w, data); err != nil {
		slog.Error("Error rendering lint report", "error", err)
	}
}

// handleSync triggers a catalog sync and sends the user back to the index.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if err := sync.Run(r.Context(), s.db, s.syncOpts); err != nil {
		slog.Error("Error syncing sources", "error", err)
		http.Error(w, "Sync failed", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
