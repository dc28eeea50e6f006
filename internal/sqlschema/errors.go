package sqlschema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyInput is returned when the SQL text is blank.
	ErrEmptyInput = errors.New("invalid input: SQL text cannot be empty")

	// ErrNoTableDefinition is returned when the text contains no CREATE TABLE.
	ErrNoTableDefinition = errors.New("invalid SQL: no CREATE TABLE statements found, please ensure your SQL contains table definitions")

	// ErrKeyColumnMismatch is returned when a composite foreign key lists a
	// different number of local and referenced columns.
	ErrKeyColumnMismatch = errors.New("foreign key constraint column count mismatch")
)

// ParseError records one statement that neither strategy could parse.
type ParseError struct {
	Index     int // 1-based statement position
	Strategy  string
	Statement string
	Err       error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("statement %d (%s): parse error: %v", e.Index, e.Strategy, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NoTablesError is returned when no statement yielded a table.
type NoTablesError struct {
	ParseErrors []*ParseError
}

func (e *NoTablesError) Error() string {
	if len(e.ParseErrors) == 0 {
		return "failed to parse any tables from the SQL: no CREATE TABLE statements could be parsed successfully"
	}
	lines := make([]string, len(e.ParseErrors))
	for i, pe := range e.ParseErrors {
		lines[i] = pe.Error()
	}
	return "failed to parse any tables from the SQL. Parse errors encountered:\n" + strings.Join(lines, "\n")
}

// ValidationError carries every structural violation found in a schema.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "schema validation failed:\n" + strings.Join(e.Violations, "\n")
}
