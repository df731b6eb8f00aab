package lint

import (
	"strings"
)

// leadingKeywords are the statement-starting keywords a plausible SQL
// block may open with after comments are stripped.
var leadingKeywords = map[string]bool{
	"select": true, "insert": true, "update": true, "delete": true,
	"create": true, "drop": true, "alter": true, "truncate": true,
	"with": true, "explain": true, "grant": true, "revoke": true,
	"begin": true, "commit": true, "rollback": true, "merge": true,
	"set": true, "show": true, "use": true, "describe": true,
	"declare": true, "values": true, "analyze": true, "vacuum": true,
}

// Implausible reports why a fenced SQL block does not look like SQL, or
// "" when it passes. The check is purely textual: a recognized leading
// keyword, balanced quotes, and balanced parentheses. It never parses
// or executes anything.
func Implausible(body string) string {
	stripped := stripComments(body)
	fields := strings.Fields(stripped)
	if len(fields) == 0 {
		return "empty sql block"
	}
	if first := strings.ToLower(fields[0]); !leadingKeywords[first] {
		return "does not start with a SQL keyword: " + fields[0]
	}
	return checkBalance(stripped)
}

// stripComments removes -- line comments and /* */ block comments,
// leaving quoted strings untouched.
func stripComments(s string) string {
	var b strings.Builder
	var inSingle, inDouble, inBlock bool
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inBlock:
			if c == '*' && i+1 < len(s) && s[i+1] == '/' {
				inBlock = false
				i++
			}
		case inSingle:
			b.WriteByte(c)
			if c == '\'' {
				inSingle = false
			}
		case inDouble:
			b.WriteByte(c)
			if c == '"' {
				inDouble = false
			}
		case c == '-' && i+1 < len(s) && s[i+1] == '-':
			for i < len(s) && s[i] != '\n' {
				i++
			}
			if i < len(s) {
				b.WriteByte('\n')
			}
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			inBlock = true
			i++
		default:
			b.WriteByte(c)
			if c == '\'' {
				inSingle = true
			} else if c == '"' {
				inDouble = true
			}
		}
	}
	return b.String()
}

func checkBalance(s string) string {
	var inSingle, inDouble bool
	depth := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inSingle:
			if c == '\'' {
				inSingle = false
			}
		case inDouble:
			if c == '"' {
				inDouble = false
			}
		case c == '\'':
			inSingle = true
		case c == '"':
			inDouble = true
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth < 0 {
				return "unbalanced parentheses"
			}
		}
	}
	if inSingle {
		return "unterminated string literal"
	}
	if inDouble {
		return "unterminated quoted identifier"
	}
	if depth != 0 {
		return "unbalanced parentheses"
	}
	return ""
}
