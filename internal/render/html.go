package render

import (
	"bufio"
	"fmt"
	"html"
	"html/template"
	"regexp"
	"strings"

	"github.com/sqlshelf/sqlshelf/internal/domain"
)

var (
	headingLine = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*#*\s*$`)
	listItem    = regexp.MustCompile(`^\s*[-*]\s+(.*)$`)
	orderedItem = regexp.MustCompile(`^\s*\d+\.\s+(.*)$`)
	inlineLink  = regexp.MustCompile(`(!?)\[([^\]]*)\]\(([^)\s]+)\)`)
	boldSpan    = regexp.MustCompile(`\*\*([^*]+)\*\*`)
)

// Fragment converts a parsed document's markdown into an HTML body
// fragment. Headings carry the anchor ids assigned by the parser, so
// every in-document link and table-of-contents entry keeps working in
// the rendered page. Links to .md files are rewritten to their .html
// counterparts.
func Fragment(doc *domain.Document) template.HTML {
	anchors := make(map[int]string, len(doc.Sections))
	for _, s := range doc.Sections {
		anchors[s.Line] = s.Anchor
	}

	var b strings.Builder
	var para []string
	var list []string
	var ordered bool
	var fence *fenceBlock
	lineNo := 0
	inFrontmatter := false

	flushPara := func() {
		if len(para) == 0 {
			return
		}
		fmt.Fprintf(&b, "<p>%s</p>\n", inline(strings.Join(para, " ")))
		para = nil
	}
	flushList := func() {
		if len(list) == 0 {
			return
		}
		tag := "ul"
		if ordered {
			tag = "ol"
		}
		fmt.Fprintf(&b, "<%s>\n", tag)
		for _, item := range list {
			fmt.Fprintf(&b, "<li>%s</li>\n", inline(item))
		}
		fmt.Fprintf(&b, "</%s>\n", tag)
		list = nil
	}

	scanner := bufio.NewScanner(strings.NewReader(doc.Content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		lineNo++

		if lineNo == 1 && line == "---" {
			inFrontmatter = true
			continue
		}
		if inFrontmatter {
			if line == "---" {
				inFrontmatter = false
			}
			continue
		}

		if fence != nil {
			if fence.closes(line) {
				fence.write(&b)
				fence = nil
				continue
			}
			fence.lines = append(fence.lines, line)
			continue
		}
		if f := openFenceBlock(line); f != nil {
			flushPara()
			flushList()
			fence = f
			continue
		}

		if m := headingLine.FindStringSubmatch(line); m != nil {
			flushPara()
			flushList()
			level := len(m[1])
			anchor := anchors[lineNo]
			fmt.Fprintf(&b, "<h%d id=%q>%s</h%d>\n", level, anchor, inline(m[2]), level)
			continue
		}

		if m := listItem.FindStringSubmatch(line); m != nil {
			flushPara()
			if len(list) > 0 && ordered {
				flushList()
			}
			ordered = false
			list = append(list, m[1])
			continue
		}
		if m := orderedItem.FindStringSubmatch(line); m != nil {
			flushPara()
			if len(list) > 0 && !ordered {
				flushList()
			}
			ordered = true
			list = append(list, m[1])
			continue
		}

		if strings.TrimSpace(line) == "" {
			flushPara()
			flushList()
			continue
		}
		para = append(para, strings.TrimSpace(line))
	}

	flushPara()
	flushList()
	if fence != nil {
		// Unterminated fence at EOF: render what accumulated.
		fence.write(&b)
	}

	return template.HTML(b.String())
}

type fenceBlock struct {
	char     byte
	length   int
	language string
	lines    []string
}

func openFenceBlock(line string) *fenceBlock {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 || trimmed == "" {
		return nil
	}
	c := trimmed[0]
	if c != '`' && c != '~' {
		return nil
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == c {
		n++
	}
	if n < 3 {
		return nil
	}
	lang := strings.TrimSpace(trimmed[n:])
	if i := strings.IndexAny(lang, " \t"); i >= 0 {
		lang = lang[:i]
	}
	return &fenceBlock{char: c, length: n, language: strings.ToLower(lang)}
}

func (f *fenceBlock) closes(line string) bool {
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

func (f *fenceBlock) write(b *strings.Builder) {
	class := ""
	if f.language != "" {
		class = fmt.Sprintf(" class=\"language-%s\"", html.EscapeString(f.language))
	}
	fmt.Fprintf(b, "<pre><code%s>%s</code></pre>\n", class, html.EscapeString(strings.Join(f.lines, "\n")))
}

// inline escapes a span of prose and applies code spans, bold, and links.
// Code span contents are left alone; everything else gets link and bold
// markup expanded.
func inline(s string) string {
	parts := strings.Split(s, "`")
	if len(parts)%2 == 0 {
		// Unbalanced backticks: treat the text literally.
		return applySpans(html.EscapeString(s))
	}
	var b strings.Builder
	for i, part := range parts {
		if i%2 == 1 {
			fmt.Fprintf(&b, "<code>%s</code>", html.EscapeString(part))
			continue
		}
		b.WriteString(applySpans(html.EscapeString(part)))
	}
	return b.String()
}

func applySpans(escaped string) string {
	out := boldSpan.ReplaceAllString(escaped, "<strong>$1</strong>")
	return inlineLink.ReplaceAllStringFunc(out, func(m string) string {
		sub := inlineLink.FindStringSubmatch(m)
		if sub[1] == "!" {
			// Images are left as-is.
			return m
		}
		// The span is already entity-escaped, so the href drops in as-is.
		return fmt.Sprintf(`<a href="%s">%s</a>`, rewriteHref(sub[3]), sub[2])
	})
}

// rewriteHref points relative markdown links at their rendered pages.
func rewriteHref(href string) string {
	if strings.Contains(href, "://") || strings.HasPrefix(href, "mailto:") {
		return href
	}
	target, fragment := href, ""
	if i := strings.IndexByte(href, '#'); i >= 0 {
		target, fragment = href[:i], href[i:]
	}
	if strings.HasSuffix(target, ".md") {
		target = strings.TrimSuffix(target, ".md") + ".html"
	}
	return target + fragment
}
