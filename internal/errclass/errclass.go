// Package errclass turns import and export failures into user facing reports.
// Errors are categorized by their message, so anything that produces an error
// only has to use recognizable wording.
package errclass

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"
)

// Category is the kind of failure shown to the user.
type Category string

const (
	Syntax     Category = "syntax"
	Parsing    Category = "parsing"
	Constraint Category = "constraint"
	Validation Category = "validation"
	Import     Category = "import"
	Export     Category = "export"
	Network    Category = "network"
	Unknown    Category = "unknown"
)

// Context is the operation that failed.
type Context string

const (
	NoContext         Context = ""
	ImportContext     Context = "import"
	ExportContext     Context = "export"
	ValidationContext Context = "validation"
)

// Report describes a classified error.
type Report struct {
	Category    Category `json:"type"`
	Title       string   `json:"title"`
	Message     string   `json:"message"`
	Details     string   `json:"details,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Retryable   bool     `json:"retryable"`
}

type rule struct {
	category    Category
	title       string
	message     string
	patterns    []*regexp.Regexp
	suggestions []string
}

func patterns(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile("(?i)" + e)
	}
	return out
}

var (
	syntaxRule = rule{
		category: Syntax,
		title:    "SQL Syntax Error",
		message:  "There is a syntax error in your SQL statement.",
		patterns: patterns(`syntax error`, `unexpected token`, `missing.*[,;)]`, `expected.*but found`,
			`invalid.*syntax`, `parse.*error`, `unexpected.*character`),
		suggestions: []string{
			"Check for missing commas, semicolons, or parentheses",
			"Ensure proper SQL keyword usage (CREATE TABLE, etc.)",
			"Verify table and column names are valid",
			"Make sure string values are properly quoted",
		},
	}
	parsingRule = rule{
		category: Parsing,
		title:    "SQL Parsing Error",
		message:  "Unable to parse the SQL schema. The SQL structure may not be supported.",
		patterns: patterns(`failed to parse`, `cannot parse`, `parsing.*failed`, `invalid.*structure`,
			`unsupported.*format`, `malformed.*sql`),
		suggestions: []string{
			"Ensure you're using standard SQL CREATE TABLE statements",
			"Check that foreign key references are properly formatted",
			"Verify that data types are supported",
			"Try simplifying complex table definitions",
		},
	}
	constraintRule = rule{
		category: Constraint,
		title:    "Foreign Key Constraint Error",
		message:  "There is an issue with foreign key relationships in your schema.",
		patterns: patterns(`foreign key`, `constraint.*violation`, `reference.*not found`, `table.*not found`,
			`column.*not found`, `primary key`, `unique.*constraint`),
		suggestions: []string{
			"Ensure referenced tables exist before creating foreign keys",
			"Check that referenced columns exist in the target table",
			"Verify data types match between foreign key and referenced columns",
			"Make sure primary keys are defined before being referenced",
		},
	}
	validationRule = rule{
		category: Validation,
		title:    "Schema Validation Error",
		message:  "The schema contains validation errors that prevent processing.",
		patterns: patterns(`validation.*failed`, `invalid.*data`, `required.*field`, `missing.*required`,
			`duplicate.*name`, `empty.*table`),
		suggestions: []string{
			"Check that all tables have at least one column",
			"Ensure primary keys are properly defined",
			"Verify foreign key references point to existing tables and columns",
			"Make sure column names are unique within each table",
		},
	}
	importRule = rule{
		category: Import,
		title:    "Schema Import Failed",
		message:  "Failed to import the SQL schema. Please check your SQL format.",
		suggestions: []string{
			"Ensure your SQL contains valid CREATE TABLE statements",
			"Check that the SQL is properly formatted with semicolons",
			"Remove any database-specific syntax not supported",
			"Try importing a smaller schema first to test",
		},
	}
	exportRule = rule{
		category: Export,
		title:    "SQL Export Failed",
		message:  "Failed to generate SQL from your schema. There may be an issue with the table definitions.",
		suggestions: []string{
			"Check that all tables have valid names and columns",
			"Ensure foreign key relationships are properly configured",
			"Verify that all required fields are filled in",
			"Try removing complex constraints and export again",
		},
	}
	networkRule = rule{
		category: Network,
		title:    "Network Error",
		message:  "A network error occurred while processing your request.",
		patterns: patterns(`network.*error`, `connection.*failed`, `connection refused`, `timeout`,
			`deadline exceeded`, `fetch.*failed`, `cors.*error`),
		suggestions: []string{
			"Check your network connection",
			"Try again in a few moments",
			"Ensure no firewall is blocking the application",
		},
	}
	unknownRule = rule{
		category: Unknown,
		title:    "Unexpected Error",
		message:  "An unexpected error occurred while processing your request.",
		suggestions: []string{
			"Try the operation again",
			"Check the server log for additional error details",
			"If the problem persists, try with a simpler schema",
			"Consider reporting this issue with the error details",
		},
	}
)

// message rules in evaluation order
var ordered = []rule{syntaxRule, parsingRule, constraintRule, validationRule}

func (r rule) matches(msg string) bool {
	for _, p := range r.patterns {
		if p.MatchString(msg) {
			return true
		}
	}
	return false
}

func (r rule) report(details string) Report {
	return Report{
		Category:    r.category,
		Title:       r.title,
		Message:     r.message,
		Details:     details,
		Suggestions: append([]string(nil), r.suggestions...),
		Retryable:   true,
	}
}

// Classify categorizes err. Message rules are checked first (syntax, parsing,
// constraint, validation); an unmatched error in an import or export context
// falls back to that context; network failures and everything else come last.
func Classify(err error, ctx Context) Report {
	if err == nil {
		return unknownRule.report("")
	}
	msg := err.Error()

	for _, r := range ordered {
		if r.matches(msg) {
			return r.report(msg)
		}
	}

	switch ctx {
	case ImportContext:
		return importRule.report(msg)
	case ExportContext:
		return exportRule.report(msg)
	}

	if isNetwork(err) || networkRule.matches(msg) {
		return networkRule.report(msg)
	}
	return unknownRule.report(fmt.Sprintf("%s\n\nError chain:\n%s", msg, chain(err)))
}

func isNetwork(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) || errors.Is(err, context.DeadlineExceeded)
}

func chain(err error) string {
	var lines []string
	for e := err; e != nil; e = errors.Unwrap(e) {
		lines = append(lines, fmt.Sprintf("%T: %v", e, e))
	}
	return strings.Join(lines, "\n")
}

// Title returns the display title of a category.
func Title(c Category) string {
	for _, r := range []rule{syntaxRule, parsingRule, constraintRule, validationRule, importRule, exportRule, networkRule, unknownRule} {
		if r.category == c {
			return r.title
		}
	}
	return "Error"
}

// FormatSuggestions numbers suggestions one per line.
func FormatSuggestions(suggestions []string) string {
	lines := make([]string, len(suggestions))
	for i, s := range suggestions {
		lines[i] = fmt.Sprintf("%d. %s", i+1, s)
	}
	return strings.Join(lines, "\n")
}
