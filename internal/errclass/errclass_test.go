package errclass

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	"erdsketch/internal/sqlschema"
)

func TestClassify(t *testing.T) {
	_, noTables := sqlschema.Parse("CREATE TABLE (oops")
	_, dangling := sqlschema.Parse("CREATE TABLE orders (id INT PRIMARY KEY, customer_id INT, FOREIGN KEY (customer_id) REFERENCES customers(id));")
	_, duplicate := sqlschema.Parse("CREATE TABLE a (id INT PRIMARY KEY); CREATE TABLE a (id INT PRIMARY KEY);")
	_, noTable := sqlschema.Parse("SELECT 1;")

	var tests = []struct {
		name string
		err  error
		ctx  Context
		want Category
	}{
		{"statement parse error", &sqlschema.ParseError{Index: 1, Strategy: "primary", Err: errors.New("boom")}, ImportContext, Syntax},
		{"no tables parsed", noTables, ImportContext, Syntax},
		{"fallback failure", errors.New("cannot parse CREATE TABLE: table name not found"), ImportContext, Parsing},
		{"dangling reference", dangling, ImportContext, Constraint},
		{"duplicate table", duplicate, ImportContext, Validation},
		{"key column mismatch", sqlschema.ErrKeyColumnMismatch, ImportContext, Constraint},
		{"no table definition", noTable, ImportContext, Import},
		{"empty input on export", sqlschema.ErrEmptyInput, ExportContext, Export},
		{"deadline", fmt.Errorf("ping: %w", context.DeadlineExceeded), NoContext, Network},
		{"dial", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("refused")}, NoContext, Network},
		{"network wording", errors.New("connection failed: host unreachable"), ValidationContext, Network},
		{"anything else", errors.New("boom"), NoContext, Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Classify(tt.err, tt.ctx)
			assert.Equal(t, tt.want, r.Category, "%v", tt.err)
			assert.Equal(t, Title(tt.want), r.Title)
			assert.NotEmpty(t, r.Suggestions)
			assert.True(t, r.Retryable)
			assert.Contains(t, r.Details, tt.err.Error())
		})
	}
}

func TestClassifyUnknownIncludesChain(t *testing.T) {
	inner := errors.New("disk on fire")
	r := Classify(fmt.Errorf("save: %w", inner), NoContext)
	assert.Contains(t, r.Details, "Error chain:")
	assert.Contains(t, r.Details, "*errors.errorString: disk on fire")
}

func TestClassifyNil(t *testing.T) {
	assert.Equal(t, Unknown, Classify(nil, ImportContext).Category)
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "SQL Syntax Error", Title(Syntax))
	assert.Equal(t, "Schema Import Failed", Title(Import))
	assert.Equal(t, "Error", Title(Category("other")))
}

func TestFormatSuggestions(t *testing.T) {
	assert.Equal(t, "1. one\n2. two", FormatSuggestions([]string{"one", "two"}))
	assert.Equal(t, "", FormatSuggestions(nil))
}
