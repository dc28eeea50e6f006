package sqlschema

import (
	"regexp"
	"strings"
)

var createTablePattern = regexp.MustCompile(`(?i)CREATE\s+TABLE`)

// StripComments removes -- line comments and /* */ block comments. Text
// inside single-quoted literals is left alone.
func StripComments(sql string) string {
	var b strings.Builder
	b.Grow(len(sql))

	inString := false
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch {
		case inString:
			b.WriteByte(c)
			if c == '\'' {
				inString = false
			}
		case c == '\'':
			inString = true
			b.WriteByte(c)
		case c == '-' && i+1 < len(sql) && sql[i+1] == '-':
			for i < len(sql) && sql[i] != '\n' {
				i++
			}
			if i < len(sql) {
				b.WriteByte('\n')
			}
		case c == '/' && i+1 < len(sql) && sql[i+1] == '*':
			end := strings.Index(sql[i+2:], "*/")
			if end < 0 {
				i = len(sql)
			} else {
				i += end + 3
			}
			b.WriteByte(' ')
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// SplitStatements turns raw SQL text into individual statements. Semicolons
// only terminate a statement at parenthesis depth zero.
func SplitStatements(sql string) ([]string, error) {
	if strings.TrimSpace(sql) == "" {
		return nil, ErrEmptyInput
	}

	clean := strings.TrimSpace(StripComments(sql))
	if !createTablePattern.MatchString(clean) {
		return nil, ErrNoTableDefinition
	}

	return splitTopLevel(clean, ';'), nil
}

// SplitByCommas splits a table body on commas that are not nested inside
// parentheses, so DECIMAL(10,2) stays one part.
func SplitByCommas(body string) []string {
	return splitTopLevel(body, ',')
}

func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	inString := false
	start := 0

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			if c == '\'' {
				inString = false
			}
			continue
		}
		switch c {
		case '\'':
			inString = true
		case '(':
			depth++
		case ')':
			depth--
		case sep:
			if depth == 0 {
				if p := strings.TrimSpace(s[start:i]); p != "" {
					parts = append(parts, p)
				}
				start = i + 1
			}
		}
	}
	if p := strings.TrimSpace(s[start:]); p != "" {
		parts = append(parts, p)
	}
	return parts
}
