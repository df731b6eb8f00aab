package mdparse

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sqlshelf/sqlshelf/internal/domain"
	"github.com/sqlshelf/sqlshelf/internal/slug"
)

const frontmatterDelim = "---"

// linkPattern matches inline markdown links. Group 1 captures a leading
// bang (an image, which is skipped), group 2 the link text, group 3 the
// target.
var linkPattern = regexp.MustCompile(`(!?)\[([^\]]*)\]\(([^)\s]+)\)`)

// refUsePattern matches reference-style link usages, full [text][label]
// or collapsed [label][].
var refUsePattern = regexp.MustCompile(`(!?)\[([^\]]+)\]\[([^\]]*)\]`)

// refDefPattern matches reference link definitions, [label]: target.
var refDefPattern = regexp.MustCompile(`^ {0,3}\[([^\]]+)\]:\s*(\S+)\s*$`)

// headingPattern matches ATX headings with one to six hashes.
var headingPattern = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*#*\s*$`)

// ParseFile reads a markdown file under root and extracts its structure.
// relPath is the path relative to root, kept on the document for linking.
func ParseFile(root, relPath string) (*domain.Document, error) {
	file, err := os.Open(filepath.Join(root, relPath))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file, relPath)
}

// Parse reads markdown from r and extracts headings, fenced code blocks,
// links and optional YAML frontmatter. Headings and links inside fenced
// blocks are literal text and are not extracted.
func Parse(r io.Reader, relPath string) (*domain.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc := &domain.Document{
		Path:    relPath,
		Slug:    slug.Make(strings.TrimSuffix(filepath.Base(relPath), filepath.Ext(relPath))),
		Content: string(data),
	}

	scanner := bufio.NewScanner(strings.NewReader(doc.Content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		lineNo        int
		inFrontmatter bool
		fmDone        bool
		fmLines       []string
		fence         fenceState
		snippetBody   []string
		refDefs       map[string]refDef
		refUses       []refUse
	)

	for scanner.Scan() {
		line := scanner.Text()
		lineNo++

		// Frontmatter is only recognized as the very first block.
		if lineNo == 1 && line == frontmatterDelim {
			inFrontmatter = true
			continue
		}
		if inFrontmatter {
			if line == frontmatterDelim {
				inFrontmatter = false
				fmDone = true
				meta := make(map[string]any)
				if err := yaml.Unmarshal([]byte(strings.Join(fmLines, "\n")), &meta); err != nil {
					return nil, fmt.Errorf("malformed frontmatter in %s: %w", relPath, err)
				}
				doc.Metadata = meta
				continue
			}
			fmLines = append(fmLines, line)
			continue
		}

		if fence.open {
			if fence.closes(line) {
				doc.Snippets = append(doc.Snippets, domain.Snippet{
					Language: fence.language,
					Body:     strings.Join(snippetBody, "\n"),
					Line:     fence.line,
				})
				fence = fenceState{}
				snippetBody = nil
				continue
			}
			snippetBody = append(snippetBody, line)
			continue
		}

		if f, ok := openFence(line, lineNo); ok {
			fence = f
			continue
		}

		if m := headingPattern.FindStringSubmatch(line); m != nil {
			doc.Sections = append(doc.Sections, domain.Section{
				Level: len(m[1]),
				Text:  m[2],
				Line:  lineNo,
			})
			continue
		}

		if m := refDefPattern.FindStringSubmatch(line); m != nil {
			if refDefs == nil {
				refDefs = make(map[string]refDef)
			}
			label := strings.ToLower(m[1])
			// First definition of a label wins.
			if _, dup := refDefs[label]; !dup {
				target, fragment := splitTarget(m[2])
				refDefs[label] = refDef{target: target, fragment: fragment}
			}
			continue
		}

		for _, m := range linkPattern.FindAllStringSubmatch(line, -1) {
			if m[1] == "!" {
				continue
			}
			target, fragment := splitTarget(m[3])
			doc.Links = append(doc.Links, domain.Link{
				Target:   target,
				Fragment: fragment,
				Line:     lineNo,
			})
		}
		for _, m := range refUsePattern.FindAllStringSubmatch(line, -1) {
			if m[1] == "!" {
				continue
			}
			label := m[3]
			if label == "" {
				label = m[2]
			}
			refUses = append(refUses, refUse{label: strings.ToLower(label), line: lineNo})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if inFrontmatter {
		return nil, fmt.Errorf("unterminated frontmatter in %s", relPath)
	}

	// Reference-style usages resolve through their definitions, which may
	// appear anywhere in the file. A usage with no definition is plain
	// bracketed text, not a link.
	for _, use := range refUses {
		def, ok := refDefs[use.label]
		if !ok {
			continue
		}
		doc.Links = append(doc.Links, domain.Link{
			Target:   def.target,
			Fragment: def.fragment,
			Line:     use.line,
		})
	}

	// Anchors are unique per document: repeats get numeric suffixes in
	// document order.
	slugs := make([]string, len(doc.Sections))
	for i, s := range doc.Sections {
		slugs[i] = slug.Make(s.Text)
	}
	for i, anchor := range slug.Dedupe(slugs) {
		doc.Sections[i].Anchor = anchor
	}
	relinkSnippets(doc)

	doc.Title = firstTitle(doc.Sections)
	doc.Category = categoryOf(doc, fmDone)

	return doc, nil
}

// refDef is a reference link definition keyed by its lowercased label.
type refDef struct {
	target   string
	fragment string
}

// refUse is a reference-style link usage awaiting its definition.
type refUse struct {
	label string
	line  int
}

// fenceState tracks an open fenced code block.
type fenceState struct {
	open     bool
	char     byte
	length   int
	language string
	line     int
}

func openFence(line string, lineNo int) (fenceState, bool) {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 || trimmed == "" {
		return fenceState{}, false
	}
	c := trimmed[0]
	if c != '`' && c != '~' {
		return fenceState{}, false
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == c {
		n++
	}
	if n < 3 {
		return fenceState{}, false
	}
	info := strings.TrimSpace(trimmed[n:])
	// Backtick fences cannot carry backticks in the info string.
	if c == '`' && strings.Contains(info, "`") {
		return fenceState{}, false
	}
	lang := info
	if i := strings.IndexAny(info, " \t"); i >= 0 {
		lang = info[:i]
	}
	return fenceState{open: true, char: c, length: n, language: strings.ToLower(lang), line: lineNo}, true
}

// closes reports whether line terminates the fence. The closing run must
// use the same character and be at least as long as the opener.
func (f fenceState) closes(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || trimmed[0] != f.char {
		return false
	}
	for i := 0; i < len(trimmed); i++ {
		if trimmed[i] != f.char {
			return false
		}
	}
	return len(trimmed) >= f.length
}

func splitTarget(raw string) (target, fragment string) {
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		return raw[:i], raw[i+1:]
	}
	return raw, ""
}

// relinkSnippets attaches each snippet to the anchor of the nearest
// preceding heading. Runs after dedupe so the anchors carry their suffixes.
func relinkSnippets(doc *domain.Document) {
	for i := range doc.Snippets {
		snip := &doc.Snippets[i]
		for j := len(doc.Sections) - 1; j >= 0; j-- {
			if doc.Sections[j].Line < snip.Line {
				snip.Section = doc.Sections[j].Anchor
				break
			}
		}
	}
}

func firstTitle(sections []domain.Section) string {
	for _, s := range sections {
		if s.Level == 1 {
			return s.Text
		}
	}
	return ""
}

// categoryOf resolves the document's category: an explicit frontmatter
// "category" key wins, otherwise the first directory component of the
// relative path, otherwise "uncategorized".
func categoryOf(doc *domain.Document, haveMeta bool) string {
	if haveMeta {
		if c, ok := doc.Metadata["category"].(string); ok && c != "" {
			return c
		}
	}
	dir := filepath.Dir(filepath.ToSlash(doc.Path))
	if dir != "." && dir != "/" {
		parts := strings.Split(dir, "/")
		if parts[0] != "" {
			return parts[0]
		}
	}
	return "uncategorized"
}
