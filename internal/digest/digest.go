package digest

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Normalize cleans document content before hashing. It trims whitespace,
// lowercases, and normalizes line endings so that editorial noise
// (trailing spaces, CRLF checkouts) does not register as a content change.
func Normalize(content string) string {
	c := strings.ToLower(content)
	c = strings.ReplaceAll(c, "\r\n", "\n")
	lines := strings.Split(c, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Sum takes document content, normalizes it, and returns its SHA-256 hash
// as a hex string.
func Sum(content string) string {
	normalized := Normalize(content)
	hashBytes := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", hashBytes)
}
