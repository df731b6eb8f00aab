package toc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlshelf/sqlshelf/internal/domain"
)

func TestBuild(t *testing.T) {
	doc := &domain.Document{
		Sections: []domain.Section{
			{Level: 1, Text: "Joins", Anchor: "joins"},
			{Level: 2, Text: "Inner Join", Anchor: "inner-join"},
			{Level: 3, Text: "Example", Anchor: "example"},
			{Level: 2, Text: "Outer Join", Anchor: "outer-join"},
			{Level: 1, Text: "Subqueries", Anchor: "subqueries"},
		},
	}

	tree := Build(doc)
	require.Len(t, tree, 2)

	joins := tree[0]
	assert.Equal(t, "joins", joins.Anchor)
	require.Len(t, joins.Children, 2)
	assert.Equal(t, "inner-join", joins.Children[0].Anchor)
	require.Len(t, joins.Children[0].Children, 1)
	assert.Equal(t, "example", joins.Children[0].Children[0].Anchor)
	assert.Equal(t, "outer-join", joins.Children[1].Anchor)

	assert.Equal(t, "subqueries", tree[1].Anchor)
	assert.Empty(t, tree[1].Children)
}

func TestExtractEntries(t *testing.T) {
	doc := &domain.Document{
		Links: []domain.Link{
			{Target: "", Fragment: "joins", Line: 3},
			{Target: "subqueries.md", Fragment: "correlated", Line: 4},
			{Target: "https://example.com/sql", Fragment: "", Line: 5},
			{Target: "", Fragment: "outer-join", Line: 6},
		},
	}

	entries := ExtractEntries(doc)
	require.Len(t, entries, 2)
	assert.Equal(t, "joins", entries[0].Fragment)
	assert.Equal(t, "outer-join", entries[1].Fragment)
}

func TestBuildSkippedLevels(t *testing.T) {
	doc := &domain.Document{
		Sections: []domain.Section{
			{Level: 1, Text: "Title", Anchor: "title"},
			{Level: 3, Text: "Deep", Anchor: "deep"},
			{Level: 2, Text: "Shallow", Anchor: "shallow"},
		},
	}

	tree := Build(doc)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 2)
	assert.Equal(t, "deep", tree[0].Children[0].Anchor)
	assert.Equal(t, "shallow", tree[0].Children[1].Anchor)
}

func TestBuildCorpusTierOrdering(t *testing.T) {
	docs := []*domain.Document{
		{Path: "tuning/indexes.md", Category: "tuning"},
		{Path: "advanced/windows.md", Category: "advanced"},
		{Path: "basic/select.md", Category: "Basic"},
		{Path: "basic/joins.md", Category: "basic"},
		{Path: "intermediate/ctes.md", Category: "intermediate"},
	}

	categories := BuildCorpus(docs)
	require.Len(t, categories, 4)

	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"basic", "intermediate", "advanced", "tuning"}, names)

	// Documents inside a category sort by path.
	require.Len(t, categories[0].Documents, 2)
	assert.Equal(t, "basic/joins.md", categories[0].Documents[0].Path)
	assert.Equal(t, "basic/select.md", categories[0].Documents[1].Path)
}

func TestBuildCorpusEmpty(t *testing.T) {
	assert.Empty(t, BuildCorpus(nil))
}
