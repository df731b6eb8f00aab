// Package lint runs documentation-structural checks over a parsed corpus:
// navigation anchors resolve, sibling headings do not collide, and fenced
// SQL blocks look like SQL. Nothing here parses or executes SQL.
package lint

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/sqlshelf/sqlshelf/internal/domain"
	"github.com/sqlshelf/sqlshelf/internal/slug"
	"github.com/sqlshelf/sqlshelf/internal/toc"
)

// Severity classifies an issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single finding, addressable by file and line.
type Issue struct {
	File     string
	Line     int
	Severity Severity
	Check    string
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s:%d: %s: %s (%s)", i.File, i.Line, i.Severity, i.Message, i.Check)
}

// Run checks every document in the corpus and returns issues sorted by
// file then line.
func Run(docs []*domain.Document) []Issue {
	anchorsByPath := make(map[string]map[string]bool, len(docs))
	for _, d := range docs {
		anchors := make(map[string]bool, len(d.Sections))
		for _, s := range d.Sections {
			anchors[s.Anchor] = true
		}
		anchorsByPath[path.Clean(toSlash(d.Path))] = anchors
	}

	var issues []Issue
	for _, d := range docs {
		issues = append(issues, checkTitle(d)...)
		issues = append(issues, checkDuplicateAnchors(d)...)
		issues = append(issues, checkTOC(d, anchorsByPath)...)
		issues = append(issues, checkLinks(d, anchorsByPath)...)
		issues = append(issues, checkSnippets(d)...)
	}

	sort.Slice(issues, func(i, j int) bool {
		if issues[i].File != issues[j].File {
			return issues[i].File < issues[j].File
		}
		return issues[i].Line < issues[j].Line
	})
	return issues
}

func checkTitle(d *domain.Document) []Issue {
	if d.Title != "" {
		return nil
	}
	return []Issue{{
		File:     d.Path,
		Line:     1,
		Severity: SeverityWarning,
		Check:    "missing-title",
		Message:  "document has no top-level heading",
	}}
}

// checkDuplicateAnchors flags sibling headings whose generated slugs
// collide before dedupe suffixing.
func checkDuplicateAnchors(d *domain.Document) []Issue {
	var issues []Issue
	first := make(map[string]int)
	for _, s := range d.Sections {
		base := slug.Make(s.Text)
		if line, dup := first[base]; dup {
			issues = append(issues, Issue{
				File:     d.Path,
				Line:     s.Line,
				Severity: SeverityWarning,
				Check:    "duplicate-anchor",
				Message:  fmt.Sprintf("heading %q collides with heading on line %d (slug %q)", s.Text, line, base),
			})
			continue
		}
		first[base] = s.Line
	}
	return issues
}

// checkTOC verifies that every authored table-of-contents entry resolves
// to a heading anchor in its own file.
func checkTOC(d *domain.Document, anchorsByPath map[string]map[string]bool) []Issue {
	own := anchorsByPath[path.Clean(toSlash(d.Path))]

	var issues []Issue
	for _, e := range toc.ExtractEntries(d) {
		if !own[e.Fragment] {
			issues = append(issues, Issue{
				File:     d.Path,
				Line:     e.Line,
				Severity: SeverityError,
				Check:    "toc-resolves",
				Message:  fmt.Sprintf("no heading anchor %q in this file", e.Fragment),
			})
		}
	}
	return issues
}

// checkLinks verifies that relative cross-file links point at corpus
// files (and, when they carry a fragment, at an anchor within them).
// Fragment-only links belong to checkTOC.
func checkLinks(d *domain.Document, anchorsByPath map[string]map[string]bool) []Issue {
	var issues []Issue
	for _, l := range d.Links {
		if isExternal(l.Target) || l.Target == "" {
			continue
		}

		resolved := path.Clean(path.Join(path.Dir(toSlash(d.Path)), toSlash(l.Target)))
		target, known := anchorsByPath[resolved]
		if !known {
			issues = append(issues, Issue{
				File:     d.Path,
				Line:     l.Line,
				Severity: SeverityError,
				Check:    "broken-link",
				Message:  fmt.Sprintf("link target %q not found in corpus", l.Target),
			})
			continue
		}
		if l.Fragment != "" && !target[l.Fragment] {
			issues = append(issues, Issue{
				File:     d.Path,
				Line:     l.Line,
				Severity: SeverityError,
				Check:    "broken-link",
				Message:  fmt.Sprintf("no heading anchor %q in %q", l.Fragment, l.Target),
			})
		}
	}
	return issues
}

func checkSnippets(d *domain.Document) []Issue {
	var issues []Issue
	for _, s := range d.Snippets {
		if s.Language != "sql" {
			continue
		}
		if msg := Implausible(s.Body); msg != "" {
			issues = append(issues, Issue{
				File:     d.Path,
				Line:     s.Line,
				Severity: SeverityError,
				Check:    "sql-plausible",
				Message:  msg,
			})
		}
	}
	return issues
}

func isExternal(target string) bool {
	return strings.Contains(target, "://") || strings.HasPrefix(target, "mailto:")
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
