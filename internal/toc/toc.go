// Package toc builds per-document and corpus-level tables of contents
// from parsed section headings.
package toc

import (
	"sort"
	"strings"

	"github.com/sqlshelf/sqlshelf/internal/domain"
)

// Entry is one node in a document's table of contents.
type Entry struct {
	Text     string
	Anchor   string
	Level    int
	Children []*Entry
}

// Build produces the table-of-contents tree for a single document.
// Heading levels may skip (an H3 directly under an H1); each heading
// becomes a child of the nearest shallower heading before it.
func Build(doc *domain.Document) []*Entry {
	var roots []*Entry
	var stack []*Entry

	for _, s := range doc.Sections {
		e := &Entry{Text: s.Text, Anchor: s.Anchor, Level: s.Level}
		for len(stack) > 0 && stack[len(stack)-1].Level >= e.Level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, e)
		} else {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, e)
		}
		stack = append(stack, e)
	}
	return roots
}

// ExtractEntries returns the table-of-contents entries authored in the
// document itself: links carrying only a fragment, pointing at headings
// of their own file.
func ExtractEntries(doc *domain.Document) []domain.Link {
	var entries []domain.Link
	for _, l := range doc.Links {
		if l.Target == "" && l.Fragment != "" {
			entries = append(entries, l)
		}
	}
	return entries
}

// tierOrder pins the difficulty tiers ahead of any other category name.
var tierOrder = map[string]int{
	"basic":        0,
	"intermediate": 1,
	"advanced":     2,
}

// BuildCorpus groups documents into categories, difficulty tiers first
// and remaining categories alphabetical. Documents inside a category are
// ordered by path.
func BuildCorpus(docs []*domain.Document) []domain.Category {
	byName := make(map[string][]domain.Document)
	for _, d := range docs {
		name := strings.ToLower(d.Category)
		byName[name] = append(byName[name], *d)
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		oi, iok := tierOrder[names[i]]
		oj, jok := tierOrder[names[j]]
		switch {
		case iok && jok:
			return oi < oj
		case iok:
			return true
		case jok:
			return false
		default:
			return names[i] < names[j]
		}
	})

	categories := make([]domain.Category, 0, len(names))
	for _, name := range names {
		docs := byName[name]
		sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
		categories = append(categories, domain.Category{Name: name, Documents: docs})
	}
	return categories
}
