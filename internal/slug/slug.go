package slug

import (
	"fmt"
	"strings"
	"unicode"
)

// Make converts heading text into its anchor slug the way GitHub does:
// lowercase, punctuation stripped, spaces collapsed into hyphens.
func Make(text string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(strings.ToLower(text)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '\t':
			b.WriteRune('-')
		case r == '-' || r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Dedupe assigns unique anchors to a sequence of slugs in document order.
// The first occurrence keeps the bare slug, repeats get "-1", "-2" suffixes.
func Dedupe(slugs []string) []string {
	seen := make(map[string]int, len(slugs))
	out := make([]string, len(slugs))
	for i, s := range slugs {
		n, dup := seen[s]
		if !dup {
			out[i] = s
		} else {
			out[i] = fmt.Sprintf("%s-%d", s, n)
		}
		seen[s] = n + 1
	}
	return out
}
